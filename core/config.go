package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/cache"
	"github.com/goliatone/go-accounts/mailing"
)

const DefaultUserAPIBaseURL = "https://user-api-example.com"

type UserAPIConfig struct {
	BaseURL string        `koanf:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
	Debug   bool          `koanf:"debug" mapstructure:"debug"`
}

// CacheConfig layers sparsely: a false or zero value never overrides a lower
// layer, so turning things off goes through Disabled and DisableStale.
type CacheConfig struct {
	Enabled      bool          `koanf:"enabled" mapstructure:"enabled"`
	Disabled     bool          `koanf:"disabled" mapstructure:"disabled"`
	DisableStale bool          `koanf:"disable_stale" mapstructure:"disable_stale"`
	RedisURL     string        `koanf:"redis_url" mapstructure:"redis_url"`
	Prefix       string        `koanf:"prefix" mapstructure:"prefix"`
	Segment      string        `koanf:"segment" mapstructure:"segment"`
	TTL          time.Duration `koanf:"ttl" mapstructure:"ttl"`
	StaleTTL     time.Duration `koanf:"stale_ttl" mapstructure:"stale_ttl"`
	StaleTimeout time.Duration `koanf:"stale_timeout" mapstructure:"stale_timeout"`
	KeyHeaders   []string      `koanf:"key_headers" mapstructure:"key_headers"`
}

// Active reports whether reads go through the record cache.
func (c CacheConfig) Active() bool {
	return c.Enabled && !c.Disabled
}

func (c CacheConfig) Policy() cache.Policy {
	policy := cache.Policy{
		FreshFor:     c.TTL,
		StaleFor:     c.StaleTTL,
		StaleTimeout: c.StaleTimeout,
	}
	if c.DisableStale {
		policy.StaleFor = 0
	}
	return policy
}

type MailingConfig struct {
	APIKey  string        `koanf:"api_key" mapstructure:"api_key"`
	ListID  string        `koanf:"list_id" mapstructure:"list_id"`
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	UserAPI     UserAPIConfig `koanf:"user_api" mapstructure:"user_api"`
	Cache       CacheConfig   `koanf:"cache" mapstructure:"cache"`
	Mailing     MailingConfig `koanf:"mailing" mapstructure:"mailing"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "accounts",
		UserAPI: UserAPIConfig{
			BaseURL: DefaultUserAPIBaseURL,
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Prefix:       cache.DefaultPrefix,
			Segment:      cache.DefaultSegment,
			TTL:          cache.UserPolicy.FreshFor,
			StaleTTL:     cache.UserPolicy.StaleFor,
			StaleTimeout: cache.UserPolicy.StaleTimeout,
		},
		Mailing: MailingConfig{
			ListID:  mailing.DefaultListID,
			Timeout: 10 * time.Second,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	base := strings.TrimSpace(c.UserAPI.BaseURL)
	if base == "" {
		return fmt.Errorf("core: user_api.base_url is required")
	}
	if parsed, err := url.Parse(base); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: user_api.base_url %q is invalid", base)
	}
	if c.UserAPI.Timeout < 0 || c.Mailing.Timeout < 0 {
		return fmt.Errorf("core: timeouts must not be negative")
	}
	if c.Cache.TTL < 0 || c.Cache.StaleTTL < 0 || c.Cache.StaleTimeout < 0 {
		return fmt.Errorf("core: cache durations must not be negative")
	}
	return nil
}
