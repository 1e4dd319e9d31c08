package notefavicon_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notefavicon "github.com/dgduncan/go-note-favicon"
	"github.com/dgduncan/go-note-favicon/caches/local"
)

type recordedResolve struct {
	kind    notefavicon.Kind
	outcome string
}

type fakeMetrics struct {
	mu       sync.Mutex
	resolves []recordedResolve
	fetches  []bool
	writes   []bool
}

func (m *fakeMetrics) RecordResolve(kind notefavicon.Kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolves = append(m.resolves, recordedResolve{kind, outcome})
}

func (m *fakeMetrics) RecordFetch(success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, success)
}

func (m *fakeMetrics) RecordCacheWrite(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, success)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		expected notefavicon.Kind
	}{
		{raw: "data:image/png;base64,iVBORw==", expected: notefavicon.KindBase64},
		{raw: "data:image/gif;base64,R0lGOD", expected: notefavicon.KindBase64},
		{raw: "  DATA:IMAGE/svg+xml;base64,PHN2Zz4=", expected: notefavicon.KindBase64},
		{raw: "data:text/plain;base64,aGk=", expected: notefavicon.KindURL},
		{raw: "https://example.com/page", expected: notefavicon.KindURL},
		{raw: "example.com", expected: notefavicon.KindURL},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, notefavicon.Classify(tt.raw), tt.raw)
	}
}

func TestResolveInlineImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := local.NewBasicCache()
	fetcher := newFakeFetcher([]byte{1}, "image/png")
	metrics := &fakeMetrics{}
	r := notefavicon.NewResolver(notefavicon.New(backend, nil, testTime, nil,
		notefavicon.WithFetcher(fetcher), notefavicon.WithMetrics(metrics)))

	for _, raw := range []string{
		"data:image/gif;base64,R0lGODlhAQABAAAAACw=",
		" Data:Image/png;base64,iVBORw== ",
	} {
		assert.Equal(t, raw, r.Resolve(ctx, raw))
	}

	reads, writes := backend.Stats()
	assert.Equal(t, 0, reads, "inline values must not touch the cache")
	assert.Equal(t, 0, writes)
	assert.Equal(t, 0, fetcher.total())
	assert.Equal(t, []recordedResolve{
		{notefavicon.KindBase64, notefavicon.OutcomeInline},
		{notefavicon.KindBase64, notefavicon.OutcomeInline},
	}, metrics.resolves)
}

func TestResolveBlank(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher([]byte{1}, "image/png")
	r := notefavicon.NewResolver(newTestStore(local.NewBasicCache(), fetcher, nil))

	assert.Equal(t, "", r.Resolve(context.Background(), ""))
	assert.Equal(t, "", r.Resolve(context.Background(), "   "))
	assert.Equal(t, 0, fetcher.total())
}

func TestResolveInvalidURL(t *testing.T) {
	t.Parallel()

	backend := local.NewBasicCache()
	fetcher := newFakeFetcher([]byte{1}, "image/png")
	r := notefavicon.NewResolver(newTestStore(backend, fetcher, nil))

	assert.Equal(t, "", r.Resolve(context.Background(), "just some text"))
	assert.Equal(t, 0, fetcher.total())

	_, writes := backend.Stats()
	assert.Equal(t, 0, writes)
}

func TestResolveFetchesOncePerOrigin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fetcher := newFakeFetcher([]byte{0x89, 0x50, 0x4E, 0x47}, "image/png")
	metrics := &fakeMetrics{}
	r := notefavicon.NewResolver(notefavicon.New(local.NewBasicCache(), nil, testTime, nil,
		notefavicon.WithFetcher(fetcher), notefavicon.WithMetrics(metrics)))

	first := r.Resolve(ctx, "https://example.com/page")
	second := r.Resolve(ctx, "https://example.com/other-page")

	assert.Equal(t, "data:image/png;base64,iVBORw==", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.count("https://example.com"))
	assert.Equal(t, []recordedResolve{
		{notefavicon.KindURL, notefavicon.OutcomeFetched},
		{notefavicon.KindURL, notefavicon.OutcomeHit},
	}, metrics.resolves)
	assert.Equal(t, []bool{true}, metrics.fetches)
	assert.Equal(t, []bool{true}, metrics.writes)
}

func TestResolveFailureSuppression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		retryFailures   bool
		expectedFetches int
		secondOutcome   string
	}{
		{
			name:            "failed origin is not fetched again",
			expectedFetches: 1,
			secondOutcome:   notefavicon.OutcomeFailure,
		},
		{
			name:            "retry failures fetches again",
			retryFailures:   true,
			expectedFetches: 2,
			secondOutcome:   notefavicon.OutcomeEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			fetcher := failingFetcher(errors.New("dial tcp: lookup badhost.invalid: no such host"))
			metrics := &fakeMetrics{}
			store := notefavicon.New(local.NewBasicCache(), &notefavicon.Config{RetryFailures: tt.retryFailures},
				testTime, nil, notefavicon.WithFetcher(fetcher), notefavicon.WithMetrics(metrics))
			r := notefavicon.NewResolver(store)

			assert.Equal(t, "", r.Resolve(ctx, "https://badhost.invalid/x"))
			assert.Equal(t, "", r.Resolve(ctx, "https://badhost.invalid/y"))

			assert.Equal(t, tt.expectedFetches, fetcher.count("https://badhost.invalid"))
			assert.Equal(t, recordedResolve{notefavicon.KindURL, notefavicon.OutcomeEmpty}, metrics.resolves[0])
			assert.Equal(t, recordedResolve{notefavicon.KindURL, tt.secondOutcome}, metrics.resolves[1])

			entry, state := store.Lookup(ctx, "https://badhost.invalid")
			assert.Equal(t, notefavicon.CachedFailure, state)
			assert.Equal(t, "", entry.Image)
		})
	}
}

func TestResolveCanceledThenResolvedAgain(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher([]byte{0x89, 0x50, 0x4E, 0x47}, "image/png")
	store := newTestStore(local.NewBasicCache(), fetcher, nil)
	r := notefavicon.NewResolver(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, "", r.Resolve(ctx, "https://example.com/page"))

	_, state := store.Lookup(context.Background(), "https://example.com")
	assert.Equal(t, notefavicon.NotCached, state, "a canceled resolve must not cache a failure")

	assert.Equal(t, "data:image/png;base64,iVBORw==", r.Resolve(context.Background(), "https://example.com/page"))
	assert.Equal(t, 2, fetcher.count("https://example.com"))
}

func TestResolveCanceledOverHTTP(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	_, provider := providerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	})

	store := notefavicon.New(local.NewBasicCache(), &notefavicon.Config{Provider: provider}, testTime, nil)
	r := notefavicon.NewResolver(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, "", r.Resolve(ctx, "https://example.com"))
	assert.Equal(t, "data:image/png;base64,iVBORw==", r.Resolve(context.Background(), "https://example.com"))
	assert.Equal(t, int32(1), requests.Load())
}

func TestResolveAfterClearFetchesAgain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fetcher := newFakeFetcher([]byte{1}, "image/png")
	store := newTestStore(local.NewBasicCache(), fetcher, nil)
	r := notefavicon.NewResolver(store)

	r.Resolve(ctx, "https://example.com")
	require.NoError(t, r.Store().Clear(ctx))
	r.Resolve(ctx, "https://example.com")

	assert.Equal(t, 2, fetcher.count("https://example.com"))
}

func TestResolveWriteErrorStillReturnsImage(t *testing.T) {
	t.Parallel()

	backend := &errBackend{BasicCache: local.NewBasicCache(), writeErr: errors.New("disk full")}
	r := notefavicon.NewResolver(newTestStore(backend, newFakeFetcher([]byte{0x89, 0x50, 0x4E, 0x47}, "image/png"), nil))

	assert.Equal(t, "data:image/png;base64,iVBORw==", r.Resolve(context.Background(), "https://example.com"))
}

// The scenarios below run against a real HTTP provider.

func TestResolveOverHTTP(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	_, provider := providerServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("domain") != "example.com" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	})

	ctx := context.Background()
	backend := local.NewBasicCache()
	r := notefavicon.NewResolver(notefavicon.New(backend, &notefavicon.Config{Provider: provider}, testTime, nil))

	assert.Equal(t, "data:image/png;base64,iVBORw==", r.Resolve(ctx, "https://example.com/page"))
	assert.Equal(t, "data:image/png;base64,iVBORw==", r.Resolve(ctx, "https://example.com/other-page"))
	assert.Equal(t, int32(1), requests.Load())

	// provider answers 404 for other hosts: cached as failure, not retried
	assert.Equal(t, "", r.Resolve(ctx, "https://unknown.example/x"))
	assert.Equal(t, "", r.Resolve(ctx, "https://unknown.example/y"))
	assert.Equal(t, int32(2), requests.Load())

	stored, _ := backend.Document()
	assert.Equal(t, notefavicon.Document{
		"https://example.com":     {Image: "data:image/png;base64,iVBORw==", Timestamp: testTime().UnixMilli()},
		"https://unknown.example": {Image: "", Timestamp: testTime().UnixMilli()},
	}, decodeDocument(t, stored))
}

func TestResolveTransportError(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, errors.New("no such host")
	})}

	ctx := context.Background()
	store := notefavicon.New(local.NewBasicCache(), nil, testTime, nil,
		notefavicon.WithFetcher(notefavicon.NewHTTPFetcher(client, nil, nil)))
	r := notefavicon.NewResolver(store)

	assert.Equal(t, "", r.Resolve(ctx, "https://badhost.invalid/x"))
	assert.Equal(t, "", r.Resolve(ctx, "https://badhost.invalid/x"))
	assert.Equal(t, int32(1), attempts.Load())

	entry, state := store.Lookup(ctx, "https://badhost.invalid")
	assert.Equal(t, notefavicon.CachedFailure, state)
	assert.Equal(t, "", entry.Image)
}
