package notefavicon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

// acceptedImageTypes are the response content types passed through as the
// data URI MIME type. Anything else is labeled with Config.MIMEType.
var acceptedImageTypes = map[string]bool{
	"image/png":                true,
	"image/jpeg":               true,
	"image/gif":                true,
	"image/svg+xml":            true,
	"image/webp":               true,
	"image/x-icon":             true,
	"image/vnd.microsoft.icon": true,
}

// Favicon is the raw image returned by a provider.
type Favicon struct {
	Data        []byte
	ContentType string
}

// Fetcher retrieves the favicon image for an origin.
type Fetcher interface {
	Fetch(ctx context.Context, origin string) (*Favicon, error)
}

// HTTPFetcher fetches favicons from a Provider over HTTP.
type HTTPFetcher struct {
	client      *http.Client
	provider    Provider
	maxSize     int64
	defaultMIME string
}

// NewHTTPFetcher creates a fetcher for cfg.Provider. When client is nil, one
// is built with cfg.Timeout and the ProviderTransport middleware.
func NewHTTPFetcher(client *http.Client, cfg *Config, logger *slog.Logger) *HTTPFetcher {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.withDefaults()
	}

	if client == nil {
		client = &http.Client{
			Timeout:   c.Timeout,
			Transport: NewTransport(c.UserAgent, nil, logger)(http.DefaultTransport),
		}
	}

	return &HTTPFetcher{
		client:      client,
		provider:    c.Provider,
		maxSize:     c.MaxImageSize,
		defaultMIME: c.MIMEType,
	}
}

// Fetch issues a GET against the provider endpoint for origin's host.
func (f *HTTPFetcher) Fetch(ctx context.Context, origin string) (*Favicon, error) {
	host := hostOf(origin)
	if host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, origin)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.provider.URL(host), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("%w: image exceeds max size %d bytes", ErrFetchFailed, f.maxSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrFetchFailed)
	}

	return &Favicon{Data: data, ContentType: f.contentType(resp.Header.Get("Content-Type"))}, nil
}

func (f *HTTPFetcher) contentType(header string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err == nil {
		mediaType = strings.ToLower(mediaType)
		if acceptedImageTypes[mediaType] {
			return mediaType
		}
	}
	return f.defaultMIME
}

// Ensure HTTPFetcher implements Fetcher
var _ Fetcher = (*HTTPFetcher)(nil)
