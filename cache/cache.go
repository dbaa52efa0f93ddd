package cache

import "time"

// Cache is a generic, possibly lossy, in-memory cache. A Set may be
// dropped, so callers must treat a miss as normal.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)

	// Set stores a value with cost, returning false if it was dropped.
	Set(key K, value V, cost int64) bool

	SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool

	Del(key K)
}
