// file: internal/server/server_test.go
// version: 1.0.0
// guid: e2a9d470-5c1b-4d83-b3c4-9f7e61a0d5b8

package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rero/rero-invenio-thumbnails/internal/cache"
	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/provider"
	"github.com/rero/rero-invenio-thumbnails/internal/thumbnail"
)

// stubProvider returns a fixed URL for every ISBN.
type stubProvider struct {
	name string
	url  string
}

func (s *stubProvider) Name() string                        { return s.name }
func (s *stubProvider) BaseURL() string                     { return "http://" + s.name + ".test" }
func (s *stubProvider) ThumbnailURL(string) (string, error) { return s.url, nil }

func registerStub(t *testing.T, suffix, url string) string {
	t.Helper()
	name := "stub-" + t.Name() + "-" + suffix
	provider.Register(name, func() provider.Provider {
		return &stubProvider{name: name, url: url}
	})
	return name
}

// newTestServer builds a server over a fresh memory cache and the given
// provider chain.
func newTestServer(t *testing.T, filesDir string, providers ...string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	viper.Reset()
	viper.Set("retry.enabled", false)
	t.Cleanup(viper.Reset)

	prev := config.AppConfig
	config.AppConfig = config.Config{
		FilesDir:          filesDir,
		PublicURL:         "http://covers.test",
		MinImageDimension: 10,
		HTTPCacheMaxAge:   86400,
	}
	t.Cleanup(func() { config.AppConfig = prev })

	backend := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = backend.Close() })

	resolver := thumbnail.NewResolver(backend, providers, time.Minute)
	materializer := thumbnail.NewMaterializer(resolver, backend, time.Minute)
	return newServerWith(backend, resolver, materializer)
}

func doRequest(s *Server, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func writeCover(t *testing.T, dir, name string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func TestThumbnailURLFound(t *testing.T) {
	name := registerStub(t, "hit", "http://hit.test/cover.jpg")
	s := newTestServer(t, "", name)

	w := doRequest(s, http.MethodGet, "/api/thumbnails-url/978-0-13-468599-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "http://hit.test/cover.jpg", body["url"])
	assert.Equal(t, "9780134685991", body["isbn"])
	assert.Equal(t, name, body["provider"])
}

func TestThumbnailURLNotFound(t *testing.T) {
	s := newTestServer(t, "")

	w := doRequest(s, http.MethodGet, "/api/thumbnails-url/9780134685991", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "9780134685991")
}

func TestThumbnailURLMisconfiguredChain(t *testing.T) {
	s := newTestServer(t, "", "worldcat")

	w := doRequest(s, http.MethodGet, "/api/thumbnails-url/9780134685991", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestThumbnailServesLocalFile(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)
	writeCover(t, dir, "9780134685991.png", 200, 100)

	w := doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991?height=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("ETag"))
	assert.NotEmpty(t, w.Header().Get("Last-Modified"))

	cfg, _, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestThumbnailNotModified(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)
	writeCover(t, dir, "9780134685991.png", 50, 50)

	first := doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991",
		map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.Bytes())

	third := doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991",
		map[string]string{"If-Modified-Since": first.Header().Get("Last-Modified")})
	assert.Equal(t, http.StatusNotModified, third.Code)
}

func TestThumbnailNotFound(t *testing.T) {
	s := newTestServer(t, "")

	w := doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "9780134685991")
}

func TestThumbnailInvalidDimension(t *testing.T) {
	s := newTestServer(t, "")

	for _, target := range []string{
		"/api/thumbnails/9780134685991?width=abc",
		"/api/thumbnails/9780134685991?height=-5",
	} {
		w := doRequest(s, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestThumbnailCacheBypass(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)
	writeCover(t, dir, "9780134685991.png", 50, 50)

	require.Equal(t, http.StatusOK,
		doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991", nil).Code)
	require.NoError(t, os.Remove(filepath.Join(dir, "9780134685991.png")))

	// Cached copy still answers, bypass sees the deletion.
	assert.Equal(t, http.StatusOK,
		doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991?cached=false", nil).Code)

	// The bypass miss must not have displaced the cached positive entry.
	assert.Equal(t, http.StatusOK,
		doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991", nil).Code)
}

func TestNoCacheHeaderWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)
	config.AppConfig.HTTPCacheMaxAge = 0
	writeCover(t, dir, "9780134685991.png", 50, 50)

	w := doRequest(s, http.MethodGet, "/api/thumbnails/9780134685991", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestBaseURLsEndpoint(t *testing.T) {
	first := registerStub(t, "first", "")
	second := registerStub(t, "second", "")
	s := newTestServer(t, "", first, second)

	w := doRequest(s, http.MethodGet, "/api/base-urls", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		BaseURLs map[string]string `json:"base_urls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, first, body.BaseURLs["http://"+first+".test"])
	assert.Equal(t, second, body.BaseURLs["http://"+second+".test"])
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, "")

	w := doRequest(s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")

	w := doRequest(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, "")

	w := doRequest(s, http.MethodGet, "/api/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	echoed := doRequest(s, http.MethodGet, "/api/health",
		map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", echoed.Header().Get("X-Request-ID"))
}
