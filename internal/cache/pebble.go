// file: internal/cache/pebble.go
// version: 1.0.0
// guid: 24bdbc1a-1452-4c83-9980-61311c217300

package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// Pebble is a persistent cache variant backed by a pebble key/value store.
// Values carry the same 8-byte big-endian expiry prefix as the filesystem
// backend, and expired entries are deleted lazily on Get.
type Pebble struct {
	db *pebble.DB
}

// NewPebble opens (or creates) a pebble database at dir.
func NewPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble cache at %s: %w", dir, err)
	}
	return &Pebble{db: db}, nil
}

// Get retrieves a value, treating expired, missing or unreadable entries as
// a miss.
func (p *Pebble) Get(key string) ([]byte, bool) {
	data, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			slog.Warn("pebble cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	if len(data) < expiryHeaderSize {
		_ = closer.Close()
		slog.Warn("pebble cache entry truncated", "key", key, "size", len(data))
		return nil, false
	}

	expiry := binary.BigEndian.Uint64(data[:expiryHeaderSize])
	value := make([]byte, len(data)-expiryHeaderSize)
	copy(value, data[expiryHeaderSize:])
	if err := closer.Close(); err != nil {
		slog.Warn("pebble cache close failed", "key", key, "error", err)
	}

	if expiry != 0 && time.Now().Unix() > int64(expiry) {
		if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
			slog.Warn("failed to delete expired pebble entry", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

// Set stores a value with its expiry prefix. A non-positive TTL stores a
// zero expiry, meaning the entry never expires.
func (p *Pebble) Set(key string, value []byte, ttl time.Duration) {
	var expiry uint64
	if ttl > 0 {
		expiry = uint64(time.Now().Add(ttl).Unix())
	}

	buf := make([]byte, expiryHeaderSize+len(value))
	binary.BigEndian.PutUint64(buf[:expiryHeaderSize], expiry)
	copy(buf[expiryHeaderSize:], value)

	if err := p.db.Set([]byte(key), buf, pebble.Sync); err != nil {
		slog.Warn("pebble cache write failed", "key", key, "error", err)
	}
}

// Close closes the underlying database.
func (p *Pebble) Close() error {
	return p.db.Close()
}
