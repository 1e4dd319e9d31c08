package notefavicon

import (
	"context"
	"log/slog"
	"strings"
)

const inlineImagePrefix = "data:image"

// Kind is the shape of a favicon metadata value.
type Kind int

const (
	// KindURL is a URL whose origin's favicon must be looked up or fetched.
	KindURL Kind = iota
	// KindBase64 is an inline image data URI, usable as-is.
	KindBase64
)

func (k Kind) String() string {
	if k == KindBase64 {
		return "base64"
	}
	return "url"
}

// Classify reports whether raw is inline image data or a URL reference.
func Classify(raw string) Kind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), inlineImagePrefix) {
		return KindBase64
	}
	return KindURL
}

// Resolver turns note metadata values into displayable images.
type Resolver struct {
	store   *Store
	logger  *slog.Logger
	metrics MetricsRecorder
	retry   bool
}

// NewResolver creates a Resolver backed by store. It shares the store's
// logger, metrics recorder and failure policy.
func NewResolver(store *Store) *Resolver {
	return &Resolver{
		store:   store,
		logger:  store.logger,
		metrics: store.metrics,
		retry:   store.c.RetryFailures,
	}
}

// Store returns the cache store behind r.
func (r *Resolver) Store() *Store {
	return r.store
}

// Resolve returns an embeddable image for raw, or "" when there is nothing to
// display. Inline data URIs are returned verbatim. It never fails; errors are
// logged and degrade to whatever image could be obtained.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	kind := Classify(raw)
	if kind == KindBase64 {
		r.metrics.RecordResolve(kind, OutcomeInline)
		return raw
	}

	entry, state := r.store.Lookup(ctx, raw)
	switch state {
	case CachedImage:
		r.metrics.RecordResolve(kind, OutcomeHit)
		return entry.Image
	case CachedFailure:
		if !r.retry {
			r.logger.DebugContext(ctx, "skipping origin with cached fetch failure", "url", raw)
			r.metrics.RecordResolve(kind, OutcomeFailure)
			return ""
		}
	}

	image, err := r.store.FetchRemote(ctx, raw)
	if err != nil {
		r.logger.WarnContext(ctx, "error caching favicon", "url", raw, "error", err)
	}

	outcome := OutcomeFetched
	if image == "" {
		outcome = OutcomeEmpty
	}
	r.metrics.RecordResolve(kind, outcome)

	return image
}
