// file: internal/config/config.go
// version: 1.0.0
// guid: d52fe50e-616c-4c0d-b81b-918b8d8e10d3

package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Ordered provider chain, first match wins.
	Providers []string
	// Local directory searched by the files provider.
	FilesDir string
	// Cache backend kind: "memory", "filesystem" or "pebble".
	CacheType string
	// Directory for the filesystem and pebble cache backends.
	CacheDir string
	// Cache entry TTL in seconds.
	CacheExpire int
	// HTTP Cache-Control max-age in seconds, 0 disables browser caching.
	HTTPCacheMaxAge int
	// Minimum accepted image dimension in pixels.
	MinImageDimension int
	// Public base URL used when building files-provider thumbnail URLs.
	PublicURL string
	// Address the HTTP server listens on.
	ListenAddr string
	// Outbound requests per second to external providers, 0 = unlimited.
	FetchRateLimit float64
}

// Retry holds the HTTP retry policy. It is read fresh from viper on every
// fetch so runtime configuration changes take effect immediately.
type Retry struct {
	Enabled           bool
	Attempts          int
	BackoffMultiplier float64
	BackoffMin        float64
	BackoffMax        float64
}

var AppConfig Config

// SetDefaults registers the default configuration values with viper.
func SetDefaults() {
	viper.SetDefault("providers", []string{"files", "open library", "bnf", "google books", "google api", "amazon"})
	viper.SetDefault("files_dir", "./thumbnails")
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_dir", "./thumbnails/cache")
	viper.SetDefault("cache_expire", 3600)
	viper.SetDefault("http_cache_max_age", 86400)
	viper.SetDefault("min_image_dimension", 10)
	viper.SetDefault("public_url", "http://localhost")
	viper.SetDefault("listen_addr", ":5000")
	viper.SetDefault("fetch_rate_limit", 0.0)
	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.attempts", 5)
	viper.SetDefault("retry.backoff_multiplier", 0.5)
	viper.SetDefault("retry.backoff_min", 1.0)
	viper.SetDefault("retry.backoff_max", 10.0)
	viper.SetDefault("amazon.country", "08")
	viper.SetDefault("amazon.size", "SCLZZZZZZZ")
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		Providers:         viper.GetStringSlice("providers"),
		FilesDir:          viper.GetString("files_dir"),
		CacheType:         viper.GetString("cache_type"),
		CacheDir:          viper.GetString("cache_dir"),
		CacheExpire:       viper.GetInt("cache_expire"),
		HTTPCacheMaxAge:   viper.GetInt("http_cache_max_age"),
		MinImageDimension: viper.GetInt("min_image_dimension"),
		PublicURL:         viper.GetString("public_url"),
		ListenAddr:        viper.GetString("listen_addr"),
		FetchRateLimit:    viper.GetFloat64("fetch_rate_limit"),
	}
}

// RetryConfig returns the active retry policy. Values are read from viper on
// each call rather than captured at startup, so runtime changes take effect
// on the next fetch. This only reads viper; defaults are registered once by
// InitConfig, keeping concurrent fetches free of viper mutation.
func RetryConfig() Retry {
	return Retry{
		Enabled:           viper.GetBool("retry.enabled"),
		Attempts:          viper.GetInt("retry.attempts"),
		BackoffMultiplier: viper.GetFloat64("retry.backoff_multiplier"),
		BackoffMin:        viper.GetFloat64("retry.backoff_min"),
		BackoffMax:        viper.GetFloat64("retry.backoff_max"),
	}
}
