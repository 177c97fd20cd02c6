// file: internal/server/handlers.go
// version: 1.0.0
// guid: c4f0a8d2-7b3e-4f69-9c1d-52e8b7a4f103

package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/provider"
)

// handleThumbnailURL resolves an ISBN to a cover image URL without fetching
// the image itself.
// GET /api/thumbnails-url/:isbn?cached=false
func (s *Server) handleThumbnailURL(c *gin.Context) {
	identifier := isbn.Normalize(c.Param("isbn"))

	url, providerName, err := s.resolver.ResolveURL(identifier, useCache(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if url == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("no thumbnail found for isbn %s", identifier),
			"isbn":  identifier,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"isbn":     identifier,
		"provider": providerName,
	})
}

// handleThumbnail serves the cover image bytes, optionally resized.
// GET /api/thumbnails/:isbn?width=200&height=150&cached=false
func (s *Server) handleThumbnail(c *gin.Context) {
	identifier := isbn.Normalize(c.Param("isbn"))

	width, ok := dimensionParam(c, "width")
	if !ok {
		return
	}
	height, ok := dimensionParam(c, "height")
	if !ok {
		return
	}

	content, providerName, err := s.materializer.GetImage(identifier, useCache(c), width, height)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if content == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("no thumbnail found for isbn %s", identifier),
			"isbn":  identifier,
		})
		return
	}

	s.setCacheControl(c)
	c.Header("X-Thumbnail-Provider", providerName)

	// Conditional requests only apply when a local file backs the ISBN; its
	// mtime and size give stable validators for free. Cache hits of a
	// file-backed cover still qualify.
	if path := provider.NewFiles().Path(identifier); path != "" {
		if s.serveConditional(c, path, content) {
			return
		}
	}

	c.Data(http.StatusOK, http.DetectContentType(content), content)
}

// handleBaseURLs reports each configured provider's upstream base URL.
// GET /api/base-urls
func (s *Server) handleBaseURLs(c *gin.Context) {
	urls, err := s.resolver.BaseURLs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"base_urls": urls})
}

// useCache reports whether the request opted out of caching.
func useCache(c *gin.Context) bool {
	return c.Query("cached") != "false"
}

// dimensionParam parses a non-negative integer query parameter. A missing
// parameter is zero. On a malformed value it writes a 400 and returns false.
func dimensionParam(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid %s parameter %q", name, raw),
		})
		return 0, false
	}
	return value, true
}

// setCacheControl applies the configured browser caching policy.
func (s *Server) setCacheControl(c *gin.Context) {
	maxAge := config.AppConfig.HTTPCacheMaxAge
	if maxAge <= 0 {
		c.Header("Cache-Control", "no-cache")
		return
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
}

// serveConditional adds ETag and Last-Modified validators derived from the
// backing file and answers 304 when the client's copy is current. Returns
// true when it wrote the response.
func (s *Server) serveConditional(c *gin.Context, path string, content []byte) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	etag := fmt.Sprintf(`"%x-%x"`, info.ModTime().Unix(), info.Size())
	lastModified := info.ModTime().UTC()

	c.Header("ETag", etag)
	c.Header("Last-Modified", lastModified.Format(http.TimeFormat))

	if match := c.GetHeader("If-None-Match"); match != "" {
		if match == etag {
			c.Status(http.StatusNotModified)
			return true
		}
		// An ETag mismatch means the client copy is stale regardless of any
		// If-Modified-Since it also sent.
	} else if since := c.GetHeader("If-Modified-Since"); since != "" {
		if t, err := time.Parse(http.TimeFormat, since); err == nil && !lastModified.Truncate(time.Second).After(t) {
			c.Status(http.StatusNotModified)
			return true
		}
	}

	c.Data(http.StatusOK, http.DetectContentType(content), content)
	return true
}
