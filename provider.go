package notefavicon

import (
	"fmt"
	"net/url"
	"strings"
)

// hostPlaceholder is replaced by the origin's host name when building a
// provider request URL.
const hostPlaceholder = "{host}"

// Provider is a favicon endpoint template containing {host}.
type Provider string

const (
	ProviderGoogle     Provider = "https://www.google.com/s2/favicons?sz=32&domain={host}"
	ProviderDuckDuckGo Provider = "https://icons.duckduckgo.com/ip3/{host}.ico"
	ProviderFaviconKit Provider = "https://api.faviconkit.com/{host}/64"
)

var namedProviders = map[string]Provider{
	"google":     ProviderGoogle,
	"duckduckgo": ProviderDuckDuckGo,
	"faviconkit": ProviderFaviconKit,
}

// ParseProvider accepts a built-in provider name or a custom template.
func ParseProvider(s string) (Provider, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProviderGoogle, nil
	}
	if p, ok := namedProviders[strings.ToLower(s)]; ok {
		return p, nil
	}
	if !strings.Contains(s, hostPlaceholder) {
		return "", fmt.Errorf("provider template %q must contain %s", s, hostPlaceholder)
	}
	if _, err := url.Parse(strings.ReplaceAll(s, hostPlaceholder, "example.com")); err != nil {
		return "", fmt.Errorf("provider template %q: %w", s, err)
	}
	return Provider(s), nil
}

// URL returns the request URL for host.
func (p Provider) URL(host string) string {
	return strings.ReplaceAll(string(p), hostPlaceholder, url.QueryEscape(host))
}
