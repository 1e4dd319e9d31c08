package notefavicon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notefavicon "github.com/dgduncan/go-note-favicon"
)

func TestParseProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected notefavicon.Provider
		wantErr  bool
	}{
		{in: "", expected: notefavicon.ProviderGoogle},
		{in: "google", expected: notefavicon.ProviderGoogle},
		{in: "DuckDuckGo", expected: notefavicon.ProviderDuckDuckGo},
		{in: "faviconkit", expected: notefavicon.ProviderFaviconKit},
		{in: "https://icons.internal/{host}.png", expected: "https://icons.internal/{host}.png"},
		{in: "https://icons.internal/favicon.png", wantErr: true},
		{in: "bing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := notefavicon.ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestProviderURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://www.google.com/s2/favicons?sz=32&domain=example.com",
		notefavicon.ProviderGoogle.URL("example.com"))
	assert.Equal(t,
		"https://icons.duckduckgo.com/ip3/example.com.ico",
		notefavicon.ProviderDuckDuckGo.URL("example.com"))
	assert.Equal(t,
		"https://api.faviconkit.com/example.com/64",
		notefavicon.ProviderFaviconKit.URL("example.com"))
}
