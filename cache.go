package notefavicon

import (
	"context"
	"errors"
)

var (
	// ErrInvalidURL is returned when a value cannot be normalized to an origin.
	ErrInvalidURL = errors.New("invalid absolute url")

	// ErrFetchFailed is returned when the favicon provider could not produce an image.
	ErrFetchFailed = errors.New("favicon fetch failed")
)

// CacheEntry is one resolved favicon. An empty Image records a failed fetch.
type CacheEntry struct {
	Image     string `json:"image"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds at write time
}

// Document is the whole durable cache state, keyed by origin.
type Document map[string]CacheEntry

// EntryState tells apart the three things a lookup can find.
type EntryState int

const (
	NotCached EntryState = iota
	CachedImage
	CachedFailure
)

func (s EntryState) String() string {
	switch s {
	case CachedImage:
		return "image"
	case CachedFailure:
		return "failure"
	default:
		return "not-cached"
	}
}

// Backend persists the serialized cache Document. Read must return
// caches.ErrNoDocument when nothing has been written, and Remove must treat a
// missing document as success.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, doc []byte) error
	Remove(ctx context.Context) error
}
