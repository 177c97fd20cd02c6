// file: internal/cache/cache.go
// version: 1.0.0
// guid: af50419d-6e08-4525-b5a9-746b12940f7e

// Package cache provides the shared key/value store used for thumbnail URL
// and image payload caching. Three interchangeable backends are available:
// a fast in-memory store, a one-file-per-key filesystem store and a pebble
// backed store. Cache faults are contained here and degrade to a miss or
// no-op, never to a request failure.
package cache

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Backend is the contract shared by all cache variants. Implementations must
// be safe for concurrent use.
type Backend interface {
	// Get returns the stored value, or false when the key is absent, expired
	// or unreadable.
	Get(key string) ([]byte, bool)
	// Set stores a value with the given TTL. A non-positive TTL means "never
	// expires" for the persistent backends and "default TTL" for the memory
	// backend. Entries are replaced wholesale, never merged.
	Set(key string, value []byte, ttl time.Duration)
	// Close releases backend resources.
	Close() error
}

// New builds the cache backend selected by configuration. An unknown kind is
// a deployment error and fails hard.
func New(kind, dir string, defaultTTL time.Duration) (Backend, error) {
	switch kind {
	case "memory":
		return NewMemory(defaultTTL), nil
	case "filesystem":
		return NewFilesystem(dir), nil
	case "pebble":
		return NewPebble(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", kind)
	}
}

// URLKey derives the cache key for a thumbnail URL lookup.
func URLKey(isbn string) string {
	return hashKey(fmt.Sprintf("url:%s", isbn))
}

// ImageKey derives the cache key for an image payload at the requested
// dimensions. Unsized and sized requests never collide.
func ImageKey(isbn string, width, height int) string {
	return hashKey(fmt.Sprintf("image:%s:%dx%d", isbn, width, height))
}

func hashKey(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}
