package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// GoCache is the in-process memory tier, backed by go-cache.
// It is consulted before the persistent tier and owned per process lifetime.
type GoCache struct {
	cache *cache.Cache
}

// NewGoCache creates a new GoCache instance
// defaultExpiration: default expiration time for items (0 = never expire)
// cleanupInterval: interval for cleaning up expired items
func NewGoCache(defaultExpiration, cleanupInterval time.Duration) *GoCache {
	if defaultExpiration == 0 {
		defaultExpiration = cache.NoExpiration
	}
	return &GoCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get retrieves the value for a key.
// Returns the data and whether the key was found.
func (gc *GoCache) Get(key string) ([]byte, bool) {
	value, found := gc.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := value.([]byte)
	if !ok {
		// Stored value is not []byte, treat as missing
		return nil, false
	}
	return data, true
}

// Set stores a value under a key with the default expiration
func (gc *GoCache) Set(key string, data []byte) {
	gc.cache.Set(key, data, cache.DefaultExpiration)
}

// Delete removes a key from the cache
func (gc *GoCache) Delete(key string) {
	gc.cache.Delete(key)
}

// Clear removes all items from the cache
func (gc *GoCache) Clear() {
	gc.cache.Flush()
}

// ItemCount returns the number of items in the cache
func (gc *GoCache) ItemCount() int {
	return gc.cache.ItemCount()
}
