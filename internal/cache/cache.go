// Package cache memoizes the two read queries of the inventory core for a
// fixed window. Entries are stored serialized, so a caller mutating a slice it
// got back never changes what the next caller sees.
package cache

import (
	"context"
	"time"
)

// Keys of the two cached queries.
const (
	KeyItems        = "items"
	KeyTransactions = "transactions"
)

// Cache is a TTL cache with explicit invalidation. Staleness is checked when
// an entry is read; nothing is refreshed in the background.
type Cache interface {
	// Load decodes the entry for key into dest and reports whether a fresh
	// entry existed.
	Load(ctx context.Context, key string, dest any) (bool, error)
	Store(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// DefaultTTL is how long a read of the sheet is served before it is fetched again.
const DefaultTTL = 60 * time.Second
