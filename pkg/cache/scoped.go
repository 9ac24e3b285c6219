package cache

import (
	"context"
	"time"
)

// ScopedCache wraps a Cache with a key prefix, creating an isolated
// namespace within a shared backend. Different API surfaces (connections,
// loc, user search) use separate scopes so cache management can target
// them independently.
//
// Example usage:
//
//	base, _ := cache.NewFileCache(dir)
//	users := cache.NewScoped(base, "users:")
//	repos := cache.NewScoped(base, "repos:")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view with a prefix.
// The prefix is prepended to all keys before they reach the backend.
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves a value using the prefixed key.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a value using the prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a value using the prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close is a no-op; the underlying cache owns its resources.
func (c *ScopedCache) Close() error { return nil }

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
