// Package notes reads favicon values from the YAML front matter of markdown
// notes in a vault directory.
package notes

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKey is the front matter key holding a note's favicon value.
const DefaultKey = "favicon"

const delimiter = "---"

// ErrUnterminated is returned for front matter without a closing delimiter.
var ErrUnterminated = errors.New("front matter not terminated")

// Note is a markdown file and its parsed front matter.
type Note struct {
	// Path is relative to the vault root, with forward slashes.
	Path string
	Meta map[string]any
	// Err is set when the front matter could not be read or parsed.
	Err error
}

// FrontMatter parses the YAML block at the top of a markdown document. A
// document without front matter yields a nil map and no error.
func FrontMatter(r io.Reader) (map[string]any, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	if strings.TrimRight(strings.TrimPrefix(scanner.Text(), "\ufeff"), " \t\r") != delimiter {
		return nil, nil
	}

	var block bytes.Buffer
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == delimiter || line == "..." {
			meta := map[string]any{}
			if err := yaml.Unmarshal(block.Bytes(), &meta); err != nil {
				return nil, fmt.Errorf("parse front matter: %w", err)
			}
			return meta, nil
		}
		block.WriteString(scanner.Text())
		block.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, ErrUnterminated
}

// FaviconValue returns the non-blank string stored under key.
func FaviconValue(meta map[string]any, key string) (string, bool) {
	if key == "" {
		key = DefaultKey
	}
	v, ok := meta[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Walk reads every *.md file below root, skipping hidden directories such as
// .obsidian and .git. Notes are sorted by path. Per-note read or parse
// failures are reported in Note.Err; only walking errors are returned.
func Walk(ctx context.Context, root string) ([]Note, error) {
	var found []Note

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		note := Note{Path: filepath.ToSlash(rel)}
		note.Meta, note.Err = readFile(path)
		found = append(found, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Path < found[j].Path
	})
	return found, nil
}

func readFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return FrontMatter(f)
}
