// Package cache provides the key-value cache used by the leaderboard read
// path. The cache is an optional accelerator: every implementation degrades
// to "always miss" rather than failing, so callers fall through to direct
// computation without special handling.
package cache

import (
	"context"
	"time"
)

// Cache is the capability interface for the leaderboard cache
type Cache interface {
	// Get returns the stored value for key, or false on a miss. Backend
	// errors are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given TTL, best effort.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// DeleteByPattern removes every key matching the glob pattern, best
	// effort. Used for coarse invalidation after score writes.
	DeleteByPattern(ctx context.Context, pattern string)
}

// Noop is the cache used when no backend is configured or reachable.
// Every read misses, so all results are computed directly from the store.
type Noop struct{}

// NewNoop creates a no-op cache
func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string) ([]byte, bool)           { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration)   {}
func (Noop) DeleteByPattern(context.Context, string)              {}
