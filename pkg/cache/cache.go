// Package cache provides the byte-level caches behind the memoizing pipeline.
//
// A [Cache] stores opaque byte slices with a TTL. Keys are built by a [Keyer]
// so that every stage of the pipeline (chain resolution, layout, rendering) is
// cached under a content-derived key:
//
//	chain:<sha256(catalog, item, amount, mode)>
//	layout:<sha256(chain hash, language, direction, window, miners, ...)>
//	artifact:<sha256(layout hash, format, style)>
//
// Backends:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: bounded in-process LRU, used by the server
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: shared cache with a TTL index
//
// [Open] selects a backend by name.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key/value store for pipeline results.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Callers treat errors as misses and carry on computing.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
