// file: internal/cache/filesystem.go
// version: 1.0.0
// guid: 06e0f67e-c96e-4a48-b977-4c35f14a8e23

package cache

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// expiryHeaderSize is the fixed prefix of every cache file: a big-endian
// expiry Unix timestamp, 0 meaning the entry never expires.
const expiryHeaderSize = 8

// Filesystem is the persistent cache variant storing one file per key.
// Expired entries are removed lazily on Get; there is no background sweep.
// Concurrent writers to the same key may interleave, which at worst degrades
// to a miss on the next read since writes are whole-file replacements.
type Filesystem struct {
	dir string
}

// NewFilesystem creates a filesystem backend rooted at dir. The directory is
// created on first write if missing.
func NewFilesystem(dir string) *Filesystem {
	return &Filesystem{dir: dir}
}

// Get reads a cache file, deleting it and reporting a miss when its stored
// expiry has passed. Any I/O error is logged and treated as a miss.
func (f *Filesystem) Get(key string) ([]byte, bool) {
	path := f.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache read failed", "path", path, "error", err)
		}
		return nil, false
	}
	if len(data) < expiryHeaderSize {
		slog.Warn("cache entry truncated", "path", path, "size", len(data))
		return nil, false
	}

	expiry := binary.BigEndian.Uint64(data[:expiryHeaderSize])
	if expiry != 0 && time.Now().Unix() > int64(expiry) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove expired cache entry", "path", path, "error", err)
		}
		return nil, false
	}
	return data[expiryHeaderSize:], true
}

// Set writes a cache file with its expiry header. A non-positive TTL stores
// a zero expiry, meaning the entry never expires. Failures are logged and
// the write is dropped.
func (f *Filesystem) Set(key string, value []byte, ttl time.Duration) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		slog.Warn("failed to create cache directory", "dir", f.dir, "error", err)
		return
	}

	var expiry uint64
	if ttl > 0 {
		expiry = uint64(time.Now().Add(ttl).Unix())
	}

	buf := make([]byte, expiryHeaderSize+len(value))
	binary.BigEndian.PutUint64(buf[:expiryHeaderSize], expiry)
	copy(buf[expiryHeaderSize:], value)

	path := f.path(key)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		slog.Warn("cache write failed", "path", path, "error", err)
	}
}

// Close is a no-op for the filesystem backend.
func (f *Filesystem) Close() error {
	return nil
}

func (f *Filesystem) path(key string) string {
	return filepath.Join(f.dir, key)
}
