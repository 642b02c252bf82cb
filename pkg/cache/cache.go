// Package cache stores derived fact sets between runs.
//
// Deriving facts for a manifest can mean starting an external tool, so
// results are cached under a key built from the deriver identity and the
// manifest's content digest. Four backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance for teams running many corpora
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer]; [ScopedKeyer] prefixes them so several
// projects can share one Redis database.
package cache

import (
	"context"
	"time"
)

// TTLFacts is how long a derived fact set stays valid.
// Fact sets depend only on manifest content and deriver identity, so they
// are kept for a long time.
const TTLFacts = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key. The boolean reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
