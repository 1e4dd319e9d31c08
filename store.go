package notefavicon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dgduncan/go-note-favicon/caches"
)

// Store persists favicons in a single Document keyed by origin. The Document
// is loaded lazily from the Backend and reloaded after every write or clear.
// Store is safe for concurrent use; concurrent fetches for the same origin
// share one provider request.
type Store struct {
	backend Backend
	fetcher Fetcher
	metrics MetricsRecorder
	logger  *slog.Logger
	now     func() time.Time

	c Config

	mu     sync.Mutex
	doc    Document
	loaded bool

	inflight singleflight.Group
}

// Record is one cached origin as reported by Entries.
type Record struct {
	Origin string
	Entry  CacheEntry
	State  EntryState
}

// Option customizes a Store.
type Option func(*Store)

// WithFetcher replaces the HTTP fetcher built from the Config.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) {
		s.fetcher = f
	}
}

// WithMetrics sets the recorder for cache and fetch events.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a Store over backend.
//
// If opts is nil, DefaultConfig is used. If the 'now' function is nil,
// time.Now will be used. If the 'logger' is nil, a no-op logger writing to
// io.Discard will be used. Unless WithFetcher is given, favicons are fetched
// over HTTP from the configured Provider.
func New(
	backend Backend,
	opts *Config,
	now func() time.Time,
	logger *slog.Logger,
	options ...Option,
) *Store {
	c := DefaultConfig()
	if opts != nil {
		c = opts.withDefaults()
	}

	if now == nil {
		now = time.Now
	}

	if logger == nil {
		logger = discardLogger()
	}

	s := &Store{
		backend: backend,
		metrics: noopMetrics{},
		logger:  logger,
		now:     now,
		c:       c,
	}
	for _, o := range options {
		o(s)
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(nil, &c, logger)
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}

	return s
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.c
}

// Load returns a copy of the cache Document, reading it from the backend on
// first use or after invalidation. A missing or malformed document reads as
// empty.
func (s *Store) Load(ctx context.Context) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _ := s.load(ctx)
	return maps.Clone(doc)
}

// IsLoaded reports whether the Document is held in memory.
func (s *Store) IsLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loaded
}

// Invalidate drops the in-memory Document so the next access reloads it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()
}

// Get returns the cached image for url's origin, or "" when nothing usable
// is cached. A failed fetch also reads as "".
func (s *Store) Get(ctx context.Context, url string) string {
	entry, _ := s.Lookup(ctx, url)
	return entry.Image
}

// Lookup returns the entry for url's origin together with its state. Invalid
// URLs and entries older than Config.TTL are NotCached.
func (s *Store) Lookup(ctx context.Context, url string) (CacheEntry, EntryState) {
	origin, err := Origin(url)
	if err != nil {
		s.logger.DebugContext(ctx, "no cache key for value", "url", url, "error", err)
		return CacheEntry{}, NotCached
	}

	s.mu.Lock()
	doc, _ := s.load(ctx)
	entry, found := doc[origin]
	s.mu.Unlock()

	if !found {
		s.logger.DebugContext(ctx, "cache item not found", "origin", origin)
		return CacheEntry{}, NotCached
	}

	if s.expired(entry) {
		s.logger.DebugContext(ctx, "cache item expired",
			"origin", origin,
			"written", time.UnixMilli(entry.Timestamp).UTC().Format(time.RFC3339))
		return CacheEntry{}, NotCached
	}

	if entry.Image == "" {
		return entry, CachedFailure
	}

	s.logger.DebugContext(ctx, "cache item found", "origin", origin)
	return entry, CachedImage
}

// Put records image for url's origin and rewrites the whole document. It
// returns image unchanged; when url has no valid origin nothing is written.
// If the current document cannot be read, nothing is written and the read
// error is returned.
func (s *Store) Put(ctx context.Context, url, image string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()

	origin, err := Origin(url)
	if err != nil {
		s.logger.DebugContext(ctx, "not caching value without origin", "url", url, "error", err)
		return image, nil
	}

	doc, err := s.load(ctx)
	if err != nil {
		return image, fmt.Errorf("read cache document: %w", err)
	}
	doc[origin] = CacheEntry{
		Image:     image,
		Timestamp: s.now().UnixMilli(),
	}

	err = s.write(ctx, doc)
	s.invalidate()
	if err != nil {
		return image, err
	}

	s.logger.DebugContext(ctx, "cache item written", "origin", origin, "failure", image == "")
	return image, nil
}

// FetchRemote fetches the favicon for url's origin from the provider and
// caches it. A failed fetch is cached as an empty image and returns "".
// Concurrent calls for the same origin share one fetch. If ctx is done when
// the fetch returns, nothing is cached and the context error is returned.
func (s *Store) FetchRemote(ctx context.Context, url string) (string, error) {
	origin, err := Origin(url)
	if err != nil {
		s.logger.DebugContext(ctx, "not fetching value without origin", "url", url, "error", err)
		return "", nil
	}

	v, err, shared := s.inflight.Do(origin, func() (any, error) {
		image := s.fetch(ctx, origin)
		if err := ctx.Err(); err != nil {
			s.logger.DebugContext(ctx, "fetch abandoned, not caching", "origin", origin, "error", err)
			return "", err
		}
		return s.Put(ctx, origin, image)
	})
	if shared {
		s.logger.DebugContext(ctx, "shared in-flight fetch", "origin", origin)
	}

	image, _ := v.(string)
	return image, err
}

// Clear removes the cache document and leaves an empty Document loaded.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()

	if err := s.backend.Remove(ctx); err != nil && !errors.Is(err, caches.ErrNoDocument) {
		return fmt.Errorf("remove cache document: %w", err)
	}

	s.logger.DebugContext(ctx, "cache cleared")
	_, _ = s.load(ctx)
	return nil
}

// Entries returns every cached origin sorted by origin.
func (s *Store) Entries(ctx context.Context) []Record {
	doc := s.Load(ctx)

	records := make([]Record, 0, len(doc))
	for origin, entry := range doc {
		state := CachedImage
		switch {
		case s.expired(entry):
			state = NotCached
		case entry.Image == "":
			state = CachedFailure
		}
		records = append(records, Record{Origin: origin, Entry: entry, State: state})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Origin < records[j].Origin
	})
	return records
}

func (s *Store) fetch(ctx context.Context, origin string) string {
	start := s.now()
	favicon, err := s.fetcher.Fetch(ctx, origin)
	s.metrics.RecordFetch(err == nil, s.now().Sub(start))
	if err != nil {
		s.logger.WarnContext(ctx, "favicon fetch error", "origin", origin, "error", err)
		return ""
	}

	return EncodeDataURI(favicon.Data, favicon.ContentType)
}

// load must be called with s.mu held. A read error other than a missing
// document returns an empty Document that is not kept, together with the error.
func (s *Store) load(ctx context.Context) (Document, error) {
	if s.loaded {
		return s.doc, nil
	}

	data, err := s.backend.Read(ctx)
	switch {
	case errors.Is(err, caches.ErrNoDocument):
		s.doc, s.loaded = Document{}, true
		return s.doc, nil
	case err != nil:
		// not cached, so a transient read error is retried on next access
		s.logger.WarnContext(ctx, "error reading cache document", "error", err)
		return Document{}, err
	}

	doc := Document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.DebugContext(ctx, "malformed cache document, starting empty", "error", err)
			doc = Document{}
		}
	}
	if doc == nil { // document was the JSON literal null
		doc = Document{}
	}

	s.doc, s.loaded = doc, true
	return s.doc, nil
}

// write must be called with s.mu held.
func (s *Store) write(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err == nil {
		err = s.backend.Write(ctx, data)
	}
	s.metrics.RecordCacheWrite(err == nil)
	if err != nil {
		s.logger.WarnContext(ctx, "error writing cache document", "error", err)
		return fmt.Errorf("write cache document: %w", err)
	}
	return nil
}

// invalidate must be called with s.mu held.
func (s *Store) invalidate() {
	s.doc, s.loaded = nil, false
}

func (s *Store) expired(entry CacheEntry) bool {
	if s.c.TTL <= 0 {
		return false
	}
	return s.now().Sub(time.UnixMilli(entry.Timestamp)) > s.c.TTL
}
