// file: internal/thumbnail/resolver.go
// version: 1.0.0
// guid: 1d3c74ea-96ab-4b0a-8d5a-0f2a6f9b21aa

// Package thumbnail ties the provider chain to the cache. The resolver turns
// an ISBN into a cover image URL, the materializer turns it into image bytes.
// Both cache positive and negative outcomes with the same TTL so a miss is
// only paid for once per expiry window.
package thumbnail

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rero/rero-invenio-thumbnails/internal/cache"
	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/metrics"
	"github.com/rero/rero-invenio-thumbnails/internal/provider"
)

// urlEntry is the JSON value stored under a URL cache key. A negative result
// is an entry with an empty URL; the provider field then names the last
// provider that was actually asked before giving up.
type urlEntry struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// Resolver walks the configured provider chain, first match wins. It never
// retries at the chain level; transient-failure handling lives in the HTTP
// fetch layer.
type Resolver struct {
	cache     cache.Backend
	providers []string
	ttl       time.Duration
}

// NewResolver builds a resolver over an explicit provider order.
func NewResolver(backend cache.Backend, providers []string, ttl time.Duration) *Resolver {
	return &Resolver{cache: backend, providers: providers, ttl: ttl}
}

// NewResolverFromConfig builds a resolver from the application configuration.
func NewResolverFromConfig(backend cache.Backend) *Resolver {
	return NewResolver(
		backend,
		config.AppConfig.Providers,
		time.Duration(config.AppConfig.CacheExpire)*time.Second,
	)
}

// ResolveURL returns the cover image URL for isbn and the name of the
// provider that produced it. An empty URL with a nil error means no provider
// had an answer. With useCache set, both positive and negative outcomes are
// written with the configured TTL; without it the cache is neither read nor
// written. A provider name that is not registered is a configuration fault
// and returns an error without touching the cache.
func (r *Resolver) ResolveURL(identifier string, useCache bool) (string, string, error) {
	clean := isbn.Normalize(identifier)
	key := cache.URLKey(clean)

	if useCache {
		if data, ok := r.cache.Get(key); ok {
			var entry urlEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				metrics.CacheHit("url")
				return entry.URL, entry.Provider, nil
			}
			slog.Warn("discarding unreadable url cache entry", "isbn", clean)
		}
		metrics.CacheMiss("url")
	}

	last := ""
	for _, name := range r.providers {
		p, err := provider.New(name)
		if err != nil {
			return "", "", err
		}
		last = p.Name()
		if url := provider.Resolve(p, clean); url != "" {
			metrics.ProviderSuccess(last)
			if useCache {
				r.store(key, urlEntry{URL: url, Provider: last})
			}
			return url, last, nil
		}
		metrics.ProviderFailure(last)
	}

	if useCache {
		r.store(key, urlEntry{Provider: last})
	}
	return "", last, nil
}

// BaseURLs maps each configured provider's upstream base URL to its name,
// for the diagnostics endpoint.
func (r *Resolver) BaseURLs() (map[string]string, error) {
	urls := make(map[string]string, len(r.providers))
	for _, name := range r.providers {
		p, err := provider.New(name)
		if err != nil {
			return nil, err
		}
		urls[p.BaseURL()] = p.Name()
	}
	return urls, nil
}

func (r *Resolver) store(key string, entry urlEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Error("failed to encode url cache entry", "error", err)
		return
	}
	r.cache.Set(key, data, r.ttl)
}
