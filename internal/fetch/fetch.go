// file: internal/fetch/fetch.go
// version: 1.0.0
// guid: f48f2ddc-43e9-4485-9b3e-ede5281357ff

package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/rero/rero-invenio-thumbnails/internal/config"
)

// DefaultTimeout matches the per-request timeout used by most providers.
const DefaultTimeout = 5 * time.Second

// DefaultTransport is the transport used for all outbound requests. Tests
// replace it with a mock to intercept provider traffic.
var DefaultTransport http.RoundTripper = http.DefaultTransport

var (
	limiterMu   sync.Mutex
	limiter     *rate.Limiter
	limiterRate float64
)

// waitForSlot applies the configured outbound rate limit. A limit of zero
// means unlimited.
func waitForSlot() {
	limit := config.AppConfig.FetchRateLimit
	if limit <= 0 {
		return
	}

	limiterMu.Lock()
	if limiter == nil || limiterRate != limit {
		limiter = rate.NewLimiter(rate.Limit(limit), 1)
		limiterRate = limit
	}
	l := limiter
	limiterMu.Unlock()

	if err := l.Wait(context.Background()); err != nil {
		slog.Warn("rate limiter wait interrupted", "error", err)
	}
}

// Get performs an HTTP GET with bounded exponential-backoff retry. Only
// transport-level failures are retried; any HTTP response, including 404 and
// 500, is returned as a normal result after a single attempt. The retry
// policy is read fresh from configuration on every call, and retries are
// skipped entirely when the policy disables them. After exhausting all
// attempts the last transport error is returned.
func Get(url string, headers map[string]string, timeout time.Duration) (*http.Response, error) {
	waitForSlot()

	policy := config.RetryConfig()
	if !policy.Enabled || policy.Attempts <= 1 {
		return getOnce(url, headers, timeout)
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: timeout, Transport: DefaultTransport}
	client.Logger = nil
	client.RetryMax = policy.Attempts - 1
	client.RetryWaitMin = time.Duration(policy.BackoffMin * float64(time.Second))
	client.RetryWaitMax = time.Duration(policy.BackoffMax * float64(time.Second))
	client.CheckRetry = func(_ context.Context, resp *http.Response, err error) (bool, error) {
		// Status codes are expected steady-state outcomes, never retried.
		return err != nil, nil
	}
	client.Backoff = backoff(policy.BackoffMultiplier)

	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %s: %w", url, err)
	}
	return resp, nil
}

// getOnce performs a single attempt with no retry machinery.
func getOnce(url string, headers map[string]string, timeout time.Duration) (*http.Response, error) {
	client := &http.Client{Timeout: timeout, Transport: DefaultTransport}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return client.Do(req)
}

// backoff returns the wait computed as multiplier * 2^attempt seconds,
// clamped to the [min, max] window.
func backoff(multiplier float64) retryablehttp.Backoff {
	return func(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
		wait := time.Duration(multiplier * math.Pow(2, float64(attemptNum)) * float64(time.Second))
		if wait < min {
			wait = min
		}
		if wait > max {
			wait = max
		}
		return wait
	}
}
