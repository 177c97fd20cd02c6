// file: internal/thumbnail/materializer.go
// version: 1.0.0
// guid: 3b7f0c2d-9d44-4b61-8f05-6a1cf1b5ce3e

package thumbnail

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rero/rero-invenio-thumbnails/internal/cache"
	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/fetch"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/metrics"
	"github.com/rero/rero-invenio-thumbnails/internal/provider"
)

// maxDownloadBytes bounds how much image data is read from an upstream URL.
const maxDownloadBytes = 10 * 1024 * 1024

// CacheProviderName labels image bytes that were served from the cache
// rather than resolved fresh.
const CacheProviderName = "cache"

// negativeImage is the sentinel stored under an image cache key when no
// provider could produce a cover. A single zero byte can never be a decodable
// image, so it is unambiguous against real payloads.
var negativeImage = []byte{0}

// Materializer produces actual image bytes for an ISBN at the requested
// dimensions. Every (isbn, width, height) combination has its own cache
// entry, so resized variants never shadow the original.
type Materializer struct {
	resolver *Resolver
	cache    cache.Backend
	ttl      time.Duration
}

// NewMaterializer builds a materializer sharing the resolver's cache backend.
func NewMaterializer(resolver *Resolver, backend cache.Backend, ttl time.Duration) *Materializer {
	return &Materializer{resolver: resolver, cache: backend, ttl: ttl}
}

// NewMaterializerFromConfig builds a materializer from the application
// configuration.
func NewMaterializerFromConfig(resolver *Resolver, backend cache.Backend) *Materializer {
	ttl := time.Duration(config.AppConfig.CacheExpire) * time.Second
	return NewMaterializer(resolver, backend, ttl)
}

// GetImage returns the cover image bytes for isbn, resized to width x height
// when either is positive, together with the name of the source that
// produced them. Cached bytes report "cache". A (nil, "", nil) return means
// the cover is known to be absent; with useCache set that knowledge is
// itself cached, without it the cache is neither read nor written. Resize
// failures on freshly fetched bytes propagate as errors and are not cached.
func (m *Materializer) GetImage(identifier string, useCache bool, width, height int) ([]byte, string, error) {
	clean := isbn.Normalize(identifier)
	key := cache.ImageKey(clean, width, height)

	if useCache {
		if data, ok := m.cache.Get(key); ok {
			metrics.CacheHit("image")
			if bytes.Equal(data, negativeImage) {
				return nil, "", nil
			}
			return data, CacheProviderName, nil
		}
		metrics.CacheMiss("image")
	}

	// Local files skip URL resolution entirely.
	files := provider.NewFiles()
	if path := files.Path(clean); path != "" {
		content, err := os.ReadFile(path)
		if err == nil {
			resized, err := imageutil.Resize(content, width, height)
			if err != nil {
				return nil, "", err
			}
			if useCache {
				m.cache.Set(key, resized, m.ttl)
			}
			return resized, files.Name(), nil
		}
		slog.Warn("local thumbnail unreadable, falling back to providers",
			"isbn", clean, "path", path, "error", err)
	}

	url, providerName, err := m.resolver.ResolveURL(clean, useCache)
	if err != nil {
		return nil, "", err
	}
	if url == "" {
		if useCache {
			m.cache.Set(key, negativeImage, m.ttl)
		}
		return nil, "", nil
	}

	content, err := m.download(url)
	if err != nil {
		slog.Warn("thumbnail download failed",
			"isbn", clean, "provider", providerName, "url", url, "error", err)
		if useCache {
			m.cache.Set(key, negativeImage, m.ttl)
		}
		return nil, "", nil
	}

	resized, err := imageutil.Resize(content, width, height)
	if err != nil {
		return nil, "", err
	}
	if useCache {
		m.cache.Set(key, resized, m.ttl)
	}
	return resized, providerName, nil
}

// download fetches the resolved image URL with the standard retry policy.
func (m *Materializer) download(url string) ([]byte, error) {
	start := time.Now()
	resp, err := fetch.Get(url, nil, fetch.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &downloadError{url: url, status: resp.StatusCode}
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, err
	}
	metrics.ObserveDownload(time.Since(start))
	return content, nil
}

type downloadError struct {
	url    string
	status int
}

func (e *downloadError) Error() string {
	return fmt.Sprintf("unexpected status %d downloading %s", e.status, e.url)
}
