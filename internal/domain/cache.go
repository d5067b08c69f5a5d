package domain

import (
	"context"
	"time"
)

// CacheStore is the cache backend contract. Entries live for the sliding TTL
// (re-armed on each hit) bounded by the absolute TTL ceiling. The cache is a
// pure performance optimization: implementations and callers must treat any
// failure as a miss, never as an operation error.
type CacheStore interface {
	// Get returns (value, true, nil) on a hit and (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, sliding, absolute time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}
