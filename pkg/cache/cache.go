// Package cache provides pluggable response caching for GitHub API lookups.
//
// Three backends are available:
//   - FileCache: file-based storage for CLI usage (~/.cache/ghorbit/)
//   - RedisCache: redis-backed storage for server deployments
//   - NullCache: no-op cache for tests or --no-cache runs
//
// All backends store opaque byte slices under string keys with a per-entry
// TTL. Keys are hashed before hitting the backend, so arbitrary strings
// (URLs included) are safe keys.
package cache

import (
	"context"
	"time"
)

// Cache stores byte payloads under string keys with per-entry expiration.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found and fresh; an expired or missing entry is a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}