package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenEnvironmentEmpty(t *testing.T) {
	cfg, err := Load(context.Background(), map[string]string{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UserAPI.BaseURL != "https://user-api-example.com" {
		t.Fatalf("expected default user api, got %q", cfg.UserAPI.BaseURL)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("expected cache disabled without USE_CACHE")
	}
	if cfg.Cache.StaleTimeout != time.Second {
		t.Fatalf("expected default stale timeout, got %s", cfg.Cache.StaleTimeout)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	cfg, err := Load(context.Background(), map[string]string{
		"USER_API":            "https://envy.com/",
		"USE_CACHE":           "true",
		"CACHE_REDIS_URL":     "redis://localhost:6379",
		"CACHE_PREFIX":        "cache:",
		"CACHE_TTL":           "5s",
		"CACHE_STALE_TIMEOUT": "250ms",
		"CACHE_KEY_HEADERS":   "bearer",
		"MAILCHIMP_KEY":       "abc-us7",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UserAPI.BaseURL != "https://envy.com/" {
		t.Fatalf("expected USER_API honoured, got %q", cfg.UserAPI.BaseURL)
	}
	if !cfg.Cache.Enabled || cfg.Cache.RedisURL != "redis://localhost:6379" {
		t.Fatalf("unexpected cache config %#v", cfg.Cache)
	}
	if cfg.Cache.TTL != 5*time.Second || cfg.Cache.StaleTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected cache durations %#v", cfg.Cache)
	}
	if len(cfg.Cache.KeyHeaders) != 1 || cfg.Cache.KeyHeaders[0] != "bearer" {
		t.Fatalf("unexpected key headers %v", cfg.Cache.KeyHeaders)
	}
	if cfg.Mailing.APIKey != "abc-us7" || cfg.Mailing.ListID != "e17fe5d778" {
		t.Fatalf("unexpected mailing config %#v", cfg.Mailing)
	}
}

func TestParseEnv_RejectsMalformedDuration(t *testing.T) {
	if _, err := ParseEnv(map[string]string{"CACHE_TTL": "soon"}); err == nil {
		t.Fatalf("expected malformed duration error")
	}
}

func TestParseEnv_DisableStale(t *testing.T) {
	parsed, err := ParseEnv(map[string]string{"USE_CACHE": "yes", "CACHE_DISABLE_STALE": "1"})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg := parsed.Config()
	if !cfg.Cache.DisableStale {
		t.Fatalf("expected CACHE_DISABLE_STALE to be read")
	}
	if cfg.Cache.Policy().StaleFor != 0 {
		t.Fatalf("expected zero stale window")
	}
}

func TestTruthy(t *testing.T) {
	for _, value := range []string{"1", "true", "yes", "anything"} {
		if !truthy(value) {
			t.Fatalf("expected %q to enable", value)
		}
	}
	for _, value := range []string{"", "0", "false", "OFF"} {
		if truthy(value) {
			t.Fatalf("expected %q to disable", value)
		}
	}
}
