package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgduncan/go-note-favicon/caches"
)

// EnvCacheDir overrides the default cache directory.
const EnvCacheDir = "NOTEFAVICON_CACHE_DIR"

// Cache stores the cache document as a single JSON file.
type Cache struct {
	path string
}

// Dir resolves the default cache directory.
// Precedence:
//  1. NOTEFAVICON_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/notefavicon
func Dir() (string, error) {
	if c, ok := os.LookupEnv(EnvCacheDir); ok && c != "" {
		return c, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	return filepath.Join(dir, "notefavicon"), nil
}

// New returns a file backend writing caches.DefaultDocumentName inside dir.
// The directory is created on first write.
func New(dir string) (*Cache, error) {
	if dir == "" {
		return nil, caches.ValidationError{
			Reason: "empty cache directory",
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	return &Cache{path: filepath.Join(abs, caches.DefaultDocumentName)}, nil
}

// Path returns the location of the cache file.
func (c *Cache) Path() string {
	return c.path
}

// Read returns the file contents, or caches.ErrNoDocument if it does not exist.
func (c *Cache) Read(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, caches.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return b, nil
}

// Write replaces the file contents. The document is written to a temporary
// file in the same directory and renamed over the old one.
func (c *Cache) Write(_ context.Context, doc []byte) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil { //nolint:mnd
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Remove deletes the file. A missing file is not an error.
func (c *Cache) Remove(_ context.Context) error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}
