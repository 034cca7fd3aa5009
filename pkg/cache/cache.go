// Package cache provides pluggable byte caches for pipeline results.
//
// Two stages of the annotation pipeline are cached: normalized annotation
// results (keyed by a content hash of the raw payload) and rendered artifacts
// (keyed by the model hash plus render options). Backends:
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long cached entries stay valid unless callers override it.
const DefaultTTL = 24 * time.Hour

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A non-positive ttl stores the entry without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
