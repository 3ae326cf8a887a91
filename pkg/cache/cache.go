// Package cache memoizes generated heightfields and encoded artifacts.
//
// Generation is a pure function of its configuration: the same algorithm,
// sizes, roughness, interval and seed always produce the same grid. The
// pipeline uses this to skip regeneration entirely when a key is already
// present.
//
// # Backends
//
//   - [FileCache]: JSON entries on disk, used by the CLI
//   - [RedisCache]: shared cache for several `terrain serve` instances
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes the full generation
// configuration; [ScopedKeyer] namespaces another keyer with a prefix.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// TTLGrid is how long a generated heightfield stays cached.
	TTLGrid = 7 * 24 * time.Hour

	// TTLArtifact is how long an encoded PNG, TIFF or JSON artifact stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte payloads under string keys.
//
// A miss is reported as (nil, false, nil). Errors are reserved for backend
// failures; callers in this module treat them like misses.
type Cache interface {
	// Get returns the payload stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
