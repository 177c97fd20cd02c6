// file: internal/config/config_test.go
// version: 1.0.0
// guid: 6de3a47c-4e8b-4c34-bafc-42956d0a1586

package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	InitConfig()

	if AppConfig.CacheType != "memory" {
		t.Errorf("expected default cache_type memory, got %q", AppConfig.CacheType)
	}
	if AppConfig.CacheExpire != 3600 {
		t.Errorf("expected default cache_expire 3600, got %d", AppConfig.CacheExpire)
	}
	if AppConfig.MinImageDimension != 10 {
		t.Errorf("expected default min_image_dimension 10, got %d", AppConfig.MinImageDimension)
	}
	want := []string{"files", "open library", "bnf", "google books", "google api", "amazon"}
	if len(AppConfig.Providers) != len(want) {
		t.Fatalf("expected %d default providers, got %d", len(want), len(AppConfig.Providers))
	}
	for i, name := range want {
		if AppConfig.Providers[i] != name {
			t.Errorf("provider %d: expected %q, got %q", i, name, AppConfig.Providers[i])
		}
	}
}

func TestRetryConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	r := RetryConfig()
	if !r.Enabled {
		t.Error("retries should be enabled by default")
	}
	if r.Attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", r.Attempts)
	}
	if r.BackoffMultiplier != 0.5 {
		t.Errorf("expected multiplier 0.5, got %v", r.BackoffMultiplier)
	}
	if r.BackoffMin != 1.0 || r.BackoffMax != 10.0 {
		t.Errorf("expected backoff bounds [1, 10], got [%v, %v]", r.BackoffMin, r.BackoffMax)
	}
}

func TestRetryConfigReadsFresh(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	if r := RetryConfig(); r.Attempts != 5 {
		t.Fatalf("expected default 5 attempts, got %d", r.Attempts)
	}

	// A runtime configuration change must be visible on the next read.
	viper.Set("retry.attempts", 2)
	viper.Set("retry.enabled", false)
	r := RetryConfig()
	if r.Attempts != 2 {
		t.Errorf("expected updated attempts 2, got %d", r.Attempts)
	}
	if r.Enabled {
		t.Error("expected retries disabled after runtime change")
	}
}

func TestRetryConfigOnlyReads(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	// Without registered defaults the policy comes back zero-valued,
	// proving the read path performs no viper mutation of its own.
	r := RetryConfig()
	if r.Enabled {
		t.Error("expected retries disabled with no defaults registered")
	}
	if r.Attempts != 0 {
		t.Errorf("expected zero attempts with no defaults registered, got %d", r.Attempts)
	}
	if viper.GetFloat64("retry.backoff_multiplier") != 0 {
		t.Error("reading the policy must not register defaults")
	}
}
