package caches

var (
	// DefaultDocumentName is the name of the cache document. The file backend
	// uses it as the filename, the database backends as the row/item key.
	DefaultDocumentName = "cache.json"
)
