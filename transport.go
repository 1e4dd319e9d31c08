package notefavicon

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	headerAccept    = "Accept"
	headerUserAgent = "User-Agent"

	acceptImages = "image/*,*/*;q=0.8"
)

// ProviderTransport implements http.RoundTripper for requests to a favicon
// provider. It fills in the User-Agent and Accept headers when the caller did
// not set them and logs every round trip with its status and duration.
type ProviderTransport struct {
	Wrapped http.RoundTripper

	userAgent string
	logger    *slog.Logger
	now       func() time.Time
}

// RoundTrip implements http.RoundTripper. The incoming request is cloned
// before headers are added, so callers may reuse it.
func (t *ProviderTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	req := r.Clone(ctx)
	if req.Header.Get(headerUserAgent) == "" && t.userAgent != "" {
		req.Header.Set(headerUserAgent, t.userAgent)
	}
	if req.Header.Get(headerAccept) == "" {
		req.Header.Set(headerAccept, acceptImages)
	}

	start := t.now()
	t.logger.DebugContext(ctx, "requesting favicon", "url", req.URL.String())

	resp, err := t.Wrapped.RoundTrip(req)
	if err != nil {
		t.logger.DebugContext(ctx, "favicon request failed",
			"url", req.URL.String(),
			"duration", t.now().Sub(start),
			"error", err)
		return resp, err
	}

	t.logger.DebugContext(ctx, "favicon response received",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"duration", t.now().Sub(start))

	return resp, nil
}

// NewTransport creates a transport middleware for favicon provider requests.
//
// If the 'now' function is nil, time.Now will be used as the default time provider.
// If the 'logger' is nil, a no-op logger writing to io.Discard will be used.
func NewTransport(
	userAgent string,
	now func() time.Time,
	logger *slog.Logger,
) func(http.RoundTripper) http.RoundTripper {
	nowFunc := now
	if nowFunc == nil {
		nowFunc = time.Now
	}

	if logger == nil {
		logger = discardLogger()
	}

	return func(rt http.RoundTripper) http.RoundTripper {
		if rt == nil {
			rt = http.DefaultTransport
		}
		return &ProviderTransport{Wrapped: rt, userAgent: userAgent, now: nowFunc, logger: logger}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
