// file: internal/cache/memory.go
// version: 1.0.0
// guid: a0a6171b-df59-41e8-b5d7-d970308c05bc

package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the fast cache variant backed by an in-process store with native
// TTL support.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a memory backend whose entries default to defaultTTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		store: gocache.New(defaultTTL, 2*defaultTTL),
	}
}

// Get retrieves a value if present and unexpired.
func (m *Memory) Get(key string) ([]byte, bool) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores a value. A non-positive TTL falls back to the default TTL.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(key, value, ttl)
}

// Flush drops all entries. Test fixtures use it to reset shared state.
func (m *Memory) Flush() {
	m.store.Flush()
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error {
	return nil
}
