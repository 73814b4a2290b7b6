// Package itemcache caches single records by id (get-by-id memoization).
// List and page results have their own cache with stricter semantics; see
// pkg/cache.
package itemcache

import "time"

// Cache is the interface for caching individual catalog records.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with a TTL.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()

	// Close closes the cache and releases resources.
	Close()
}
