// Package config reads account service settings from the process environment.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-accounts/core"
)

// Env maps environment variables onto config fields. Unset variables leave
// the corresponding field to the defaults layer.
type Env struct {
	ServiceName     string        `env:"ACCOUNTS_SERVICE_NAME"`
	UserAPI         string        `env:"USER_API"`
	UserAPITimeout  time.Duration `env:"USER_API_TIMEOUT"`
	UserAPIDebug    bool          `env:"USER_API_DEBUG"`
	UseCache        string        `env:"USE_CACHE"`
	RedisURL        string        `env:"CACHE_REDIS_URL"`
	CachePrefix     string        `env:"CACHE_PREFIX"`
	CacheSegment    string        `env:"CACHE_SEGMENT"`
	CacheTTL        time.Duration `env:"CACHE_TTL"`
	CacheStaleTTL   time.Duration `env:"CACHE_STALE_TTL"`
	CacheStaleWait  time.Duration `env:"CACHE_STALE_TIMEOUT"`
	CacheNoStale    string        `env:"CACHE_DISABLE_STALE"`
	CacheKeyHeaders []string      `env:"CACHE_KEY_HEADERS" envSeparator:","`
	MailchimpKey    string        `env:"MAILCHIMP_KEY"`
	MailchimpListID string        `env:"MAILCHIMP_LIST_ID"`
	MailingTimeout  time.Duration `env:"MAILING_TIMEOUT"`
}

// Config converts the environment snapshot into a sparse core.Config.
func (e Env) Config() core.Config {
	return core.Config{
		ServiceName: e.ServiceName,
		UserAPI: core.UserAPIConfig{
			BaseURL: e.UserAPI,
			Timeout: e.UserAPITimeout,
			Debug:   e.UserAPIDebug,
		},
		Cache: core.CacheConfig{
			Enabled:      truthy(e.UseCache),
			RedisURL:     e.RedisURL,
			Prefix:       e.CachePrefix,
			Segment:      e.CacheSegment,
			TTL:          e.CacheTTL,
			StaleTTL:     e.CacheStaleTTL,
			StaleTimeout: e.CacheStaleWait,
			DisableStale: truthy(e.CacheNoStale),
			KeyHeaders:   e.CacheKeyHeaders,
		},
		Mailing: core.MailingConfig{
			APIKey:  e.MailchimpKey,
			ListID:  e.MailchimpListID,
			Timeout: e.MailingTimeout,
		},
	}
}

// ParseEnv reads Env from environment, or from the process when nil.
func ParseEnv(environment map[string]string) (Env, error) {
	var out Env
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&out, opts); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

// EnvLoader is a core.RawConfigLoader backed by environment variables.
type EnvLoader struct {
	Environment map[string]string
}

func (l EnvLoader) LoadRaw(context.Context) (map[string]any, error) {
	parsed, err := ParseEnv(l.Environment)
	if err != nil {
		return nil, err
	}
	return core.ConfigLayer(parsed.Config(), false), nil
}

// Load resolves a validated config from the environment over the defaults.
func Load(ctx context.Context, environment map[string]string) (core.Config, error) {
	return core.NewCfgxConfigProvider(EnvLoader{Environment: environment}).Load(ctx, core.DefaultConfig())
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

var _ core.RawConfigLoader = EnvLoader{}
