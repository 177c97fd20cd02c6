// file: internal/server/server.go
// version: 1.0.0
// guid: 9f2b61de-6a0c-4f3b-8a9f-4b6a3d7e0c21

// Package server is the HTTP boundary of the thumbnail service. It exposes
// URL resolution and image materialization over a small JSON/image API and
// owns everything HTTP-specific: query parsing, status codes, browser cache
// headers and conditional requests. The core packages know nothing about any
// of that.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rero/rero-invenio-thumbnails/internal/cache"
	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/metrics"
	"github.com/rero/rero-invenio-thumbnails/internal/thumbnail"
)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	router       *gin.Engine
	cache        cache.Backend
	resolver     *thumbnail.Resolver
	materializer *thumbnail.Materializer
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a server wired to the configured cache backend and
// provider chain.
func NewServer() (*Server, error) {
	backend, err := cache.New(
		config.AppConfig.CacheType,
		config.AppConfig.CacheDir,
		time.Duration(config.AppConfig.CacheExpire)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	resolver := thumbnail.NewResolverFromConfig(backend)
	return newServerWith(backend, resolver, thumbnail.NewMaterializerFromConfig(resolver, backend)), nil
}

// newServerWith wires a server around pre-built components (for testing).
func newServerWith(backend cache.Backend, resolver *thumbnail.Resolver, materializer *thumbnail.Materializer) *Server {
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(gin.Recovery())

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:       router,
		cache:        backend,
		resolver:     resolver,
		materializer: materializer,
	}
	server.setupRoutes()
	return server
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           cfg.Addr,
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		slog.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if err := s.cache.Close(); err != nil {
		slog.Warn("cache close failed", "error", err)
	}

	slog.Info("server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/health", s.healthCheck)

	s.router.GET("/api/thumbnails-url/:isbn", s.handleThumbnailURL)
	s.router.GET("/api/thumbnails/:isbn", s.handleThumbnail)
	s.router.GET("/api/base-urls", s.handleBaseURLs)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestIDMiddleware tags every request with a ulid, echoed in the
// X-Request-ID response header and attached to log lines.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()

		slog.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
