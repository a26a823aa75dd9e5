// Package cache stores computed node results keyed by a hash of their inputs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// A [Keyer] turns an input hash and the options that influence a result into
// a cache key. [ScopedKeyer] adds a prefix so that several deployments can
// share one backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// TTLResult is how long evaluated node outputs stay cached. Results are
	// a pure function of their inputs, so the TTL only bounds disk usage.
	TTLResult = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered graph images stay cached.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired key is reported
	// as a miss (hit == false) with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
