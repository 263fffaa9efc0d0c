package cache

//go:generate mockgen -destination=mocks/cache.go . Cache

// LoaderFunc defines a function for loading data that is missing from the cache.
// It performs the remote fetch and returns the serialized JSON payload.
type LoaderFunc func() ([]byte, error)

// ResolveOptions controls how Resolve consults the cache tiers
type ResolveOptions struct {
	// ForceRefresh skips both cache tiers and goes straight to the loader,
	// still writing the fresh result through afterward. Used for explicit
	// "refresh this list" actions.
	ForceRefresh bool
}

// Cache interface for the two-tier (memory + persistent) cache
type Cache interface {
	// Resolve retrieves data by key from the cache tiers or loads it using loader
	//
	// Resolution order:
	// 1. If key is NotCacheable, both tiers are skipped and loader is called directly
	// 2. Memory tier; on hit, return immediately
	// 3. Persistent tier; on hit, write through to the memory tier, return
	// 4. loader; on success, write to both tiers. Errors are never cached.
	//
	// Concurrent Resolve calls for the same key share a single loader
	// invocation.
	Resolve(key string, loader LoaderFunc, opts ResolveOptions) ([]byte, error)

	// Get retrieves data by key from the cache tiers without loading.
	// The second return value reports whether the key was found.
	Get(key string) ([]byte, bool)

	// Set stores data in both tiers
	Set(key string, data []byte)

	// Delete removes a key from both tiers
	Delete(key string)
}
