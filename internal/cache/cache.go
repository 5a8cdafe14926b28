// Package cache stores fetched listing pages keyed by their URL so that
// several media files of the same episode, or a re-run within the TTL, do
// not hit the subtitle site again.
package cache

import "context"

// EvictCallback is called with the key of an entry pushed out by the size limit.
// The redis provider passes a nil value.
type EvictCallback func(key string, value []byte)

// Cache is a bounded, expiring byte store.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss or backend error.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte)

	// Contains reports whether key is stored without refreshing its recency.
	Contains(ctx context.Context, key string) bool

	// Len returns the number of stored entries.
	Len(ctx context.Context) int

	Close() error
}
