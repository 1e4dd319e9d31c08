package notefavicon

import "time"

const (
	defaultMIMEType     = "image/png"
	defaultTimeout      = 10 * time.Second
	defaultMaxImageSize = 1 << 20 // 1MB
	defaultUserAgent    = "go-note-favicon"
)

type Config struct {
	// Provider is the favicon endpoint template used on a cache miss.
	Provider Provider

	// MIMEType labels fetched bytes whose response did not carry an accepted
	// image content type.
	MIMEType string

	// Timeout bounds a single provider request.
	Timeout time.Duration

	// MaxImageSize is the largest response body accepted from the provider, in bytes.
	MaxImageSize int64

	// UserAgent is sent with provider requests that do not set one.
	UserAgent string

	// TTL makes entries older than the given duration read as not cached. Zero
	// keeps entries until the cache is cleared.
	TTL time.Duration

	// RetryFailures makes the resolver fetch again for origins whose last fetch
	// failed, treating a cached empty image like a miss. By default a failed
	// origin is not retried until the cache is cleared.
	RetryFailures bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:     ProviderGoogle,
		MIMEType:     defaultMIMEType,
		Timeout:      defaultTimeout,
		MaxImageSize: defaultMaxImageSize,
		UserAgent:    defaultUserAgent,
	}
}

// withDefaults fills zero fields of c from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.MIMEType == "" {
		c.MIMEType = d.MIMEType
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxImageSize <= 0 {
		c.MaxImageSize = d.MaxImageSize
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}
