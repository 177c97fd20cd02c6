// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: 357b98c9-cd1b-47c2-8d8c-08fd5821c610

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rero_thumbnails",
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits by namespace (url or image)",
	}, []string{"namespace"})
	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rero_thumbnails",
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses by namespace (url or image)",
	}, []string{"namespace"})
	providerSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rero_thumbnails",
		Name:      "provider_success_total",
		Help:      "Total number of successful thumbnail resolutions by provider",
	}, []string{"provider"})
	providerFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rero_thumbnails",
		Name:      "provider_failure_total",
		Help:      "Total number of failed thumbnail resolutions by provider",
	}, []string{"provider"})
	downloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rero_thumbnails",
		Name:      "image_download_duration_seconds",
		Help:      "Histogram of thumbnail image download durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	})
)

// Register registers all thumbnail metrics with the default registry. Safe to
// call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			cacheHits,
			cacheMisses,
			providerSuccess,
			providerFailure,
			downloadDuration,
		)
	})
}

// CacheHit records a cache hit in the given namespace.
func CacheHit(namespace string) {
	cacheHits.WithLabelValues(namespace).Inc()
}

// CacheMiss records a cache miss in the given namespace.
func CacheMiss(namespace string) {
	cacheMisses.WithLabelValues(namespace).Inc()
}

// ProviderSuccess records a provider that produced a validated thumbnail.
func ProviderSuccess(provider string) {
	providerSuccess.WithLabelValues(provider).Inc()
}

// ProviderFailure records a provider that had no answer.
func ProviderFailure(provider string) {
	providerFailure.WithLabelValues(provider).Inc()
}

// ObserveDownload records how long one image download took.
func ObserveDownload(d time.Duration) {
	downloadDuration.Observe(d.Seconds())
}
