// file: internal/provider/provider.go
// version: 1.0.0
// guid: 673ba50e-6471-4e9f-b25f-b84dddb582e3

// Package provider implements the thumbnail source variants. Each variant
// looks up one external or local source for a cover image URL and validates
// the image content before declaring success. New variants register
// themselves by name in init(), so the resolver never needs to change when a
// source is added.
package provider

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
)

// maxImageBytes bounds how much of a candidate image is read for validation.
const maxImageBytes = 10 * 1024 * 1024

// Provider is one strategy for resolving an ISBN to a cover image URL. A
// provider is constructed fresh per resolution call and holds no cross-call
// state.
type Provider interface {
	// Name is the provider's registry and cache discriminator.
	Name() string
	// BaseURL identifies the upstream service, for diagnostics only.
	BaseURL() string
	// ThumbnailURL returns a validated cover image URL for the ISBN, or ""
	// when the provider has no answer. Implementations normalize the ISBN
	// themselves and never return a URL whose content was not confirmed to
	// be a real, minimally sized image.
	ThumbnailURL(isbn string) (string, error)
}

// Factory builds a fresh provider instance.
type Factory func() Provider

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a provider factory under its configured name. Called from
// each variant's init().
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New constructs the named provider. An unknown name indicates a
// misconfigured provider chain and is a hard error, not a data condition.
func New(name string) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown thumbnail provider %q", name)
	}
	return factory(), nil
}

// Names returns all registered provider names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve applies the uniform failure policy around a provider lookup: any
// error or panic is logged with the provider name and ISBN and converted to
// a negative result. "Not found", "network error" and "invalid content" are
// indistinguishable to the caller.
func Resolve(p Provider, isbn string) (url string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("thumbnail provider panicked",
				"provider", p.Name(), "isbn", isbn, "panic", r)
			url = ""
		}
	}()

	url, err := p.ThumbnailURL(isbn)
	if err != nil {
		slog.Warn("thumbnail lookup failed",
			"provider", p.Name(), "isbn", isbn, "error", err)
		return ""
	}
	return url
}

// minDimension returns the configured minimum accepted image dimension.
func minDimension() int {
	if d := config.AppConfig.MinImageDimension; d > 0 {
		return d
	}
	return imageutil.DefaultMinDimension
}

// readBody drains a response body with a size cap.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
