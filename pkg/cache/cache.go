// Package cache provides the byte cache used to memoise layout results.
//
// Running the layout collaborator (Graphviz in particular) is the only
// expensive step of a structural rebuild. Its output depends only on the
// node ids and the directed node pairs, so results are cached under a key
// derived from that topology (see [LayoutKey]).
//
// Implementations:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [NullCache]: never stores anything, for tests and --no-cache
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
