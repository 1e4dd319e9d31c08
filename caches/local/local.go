package local

import (
	"context"
	"sync"

	"github.com/dgduncan/go-note-favicon/caches"
)

// BasicCache keeps the cache document in memory. It does not survive the
// process and is meant for tests and throwaway runs.
type BasicCache struct {
	doc    []byte
	exists bool

	reads  int
	writes int

	lock sync.RWMutex
}

func (bc *BasicCache) Read(_ context.Context) ([]byte, error) {
	bc.lock.Lock()
	defer bc.lock.Unlock()

	bc.reads++
	if !bc.exists {
		return nil, caches.ErrNoDocument
	}

	return append([]byte(nil), bc.doc...), nil
}

func (bc *BasicCache) Write(_ context.Context, doc []byte) error {
	bc.lock.Lock()
	defer bc.lock.Unlock()

	bc.writes++
	bc.doc = append([]byte(nil), doc...)
	bc.exists = true

	return nil
}

func (bc *BasicCache) Remove(_ context.Context) error {
	bc.lock.Lock()
	defer bc.lock.Unlock()

	bc.doc = nil
	bc.exists = false

	return nil
}

// Stats returns how many times the document was read and written.
func (bc *BasicCache) Stats() (reads, writes int) {
	bc.lock.RLock()
	defer bc.lock.RUnlock()

	return bc.reads, bc.writes
}

// Document returns the stored bytes and whether a document exists.
func (bc *BasicCache) Document() ([]byte, bool) {
	bc.lock.RLock()
	defer bc.lock.RUnlock()

	return append([]byte(nil), bc.doc...), bc.exists
}

func NewBasicCache() *BasicCache {
	return &BasicCache{}
}

// NewBasicCacheWithDocument returns a BasicCache already holding doc.
func NewBasicCacheWithDocument(doc []byte) *BasicCache {
	return &BasicCache{
		doc:    append([]byte(nil), doc...),
		exists: true,
	}
}
