package notes_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgduncan/go-note-favicon/internal/notes"
)

func TestFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		expected    map[string]any
		expectedErr bool
	}{
		{
			name:     "favicon url",
			doc:      "---\nfavicon: https://example.com/page\ntags: [a, b]\n---\n# Title\n",
			expected: map[string]any{"favicon": "https://example.com/page", "tags": []any{"a", "b"}},
		},
		{
			name:     "no front matter",
			doc:      "# Title\n---\nfavicon: x\n---\n",
			expected: nil,
		},
		{
			name:     "empty document",
			doc:      "",
			expected: nil,
		},
		{
			name:     "empty block",
			doc:      "---\n---\nbody\n",
			expected: map[string]any{},
		},
		{
			name:     "crlf and dots terminator",
			doc:      "---\r\nfavicon: data:image/png;base64,iVBORw==\r\n...\r\n",
			expected: map[string]any{"favicon": "data:image/png;base64,iVBORw=="},
		},
		{
			name:        "unterminated",
			doc:         "---\nfavicon: https://example.com\n",
			expectedErr: true,
		},
		{
			name:        "malformed yaml",
			doc:         "---\nfavicon: [unclosed\n---\n",
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			meta, err := notes.FrontMatter(strings.NewReader(tt.doc))
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, meta)
		})
	}
}

func TestFaviconValue(t *testing.T) {
	t.Parallel()

	meta := map[string]any{
		"favicon": "https://example.com",
		"icon":    "data:image/gif;base64,R0lGOD",
		"blank":   "  ",
		"number":  42,
	}

	tests := []struct {
		key      string
		expected string
		found    bool
	}{
		{key: "", expected: "https://example.com", found: true},
		{key: "icon", expected: "data:image/gif;base64,R0lGOD", found: true},
		{key: "blank"},
		{key: "number"},
		{key: "missing"},
	}

	for _, tt := range tests {
		v, ok := notes.FaviconValue(meta, tt.key)
		assert.Equal(t, tt.expected, v, tt.key)
		assert.Equal(t, tt.found, ok, tt.key)
	}

	_, ok := notes.FaviconValue(nil, "")
	assert.False(t, ok)
}

func TestWalk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"b.md":                   "---\nfavicon: https://b.example\n---\n",
		"a/nested.MD":            "---\nfavicon: https://a.example\n---\n",
		"plain.md":               "no front matter\n",
		"broken.md":              "---\nfavicon: x\n",
		"image.png":              "not a note",
		".obsidian/workspace.md": "---\nfavicon: https://hidden.example\n---\n",
		".trash/deleted-note.md": "---\nfavicon: https://deleted.example\n---\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	found, err := notes.Walk(context.Background(), root)
	require.NoError(t, err)

	var paths []string
	for _, n := range found {
		paths = append(paths, n.Path)
	}
	assert.Equal(t, []string{"a/nested.MD", "b.md", "broken.md", "plain.md"}, paths)

	assert.Equal(t, "https://a.example", found[0].Meta["favicon"])
	assert.ErrorIs(t, found[2].Err, notes.ErrUnterminated)
	assert.Nil(t, found[3].Meta)
	assert.NoError(t, found[3].Err)
}

func TestWalkMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := notes.Walk(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWalkCanceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("x"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := notes.Walk(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
