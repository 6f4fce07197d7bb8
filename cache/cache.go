package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPrefix  = "cache:"
	DefaultSegment = "user"
)

var errRefreshSuperseded = errors.New("cache: refresh superseded by newer write or drop")

// Store is the key-value backend behind a Cache. Get reports a miss with
// found=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (entry Entry, found bool, err error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FetchFunc loads the authoritative response body for a descriptor.
type FetchFunc func(ctx context.Context) ([]byte, error)

type Config struct {
	Prefix     string
	Segment    string
	Policy     Policy
	KeyHeaders []string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Prefix) == "" {
		c.Prefix = DefaultPrefix
	}
	if strings.TrimSpace(c.Segment) == "" {
		c.Segment = DefaultSegment
	}
	if c.Policy == (Policy{}) {
		c.Policy = UserPolicy
	}
	if c.Policy.StaleTimeout == 0 {
		c.Policy.StaleTimeout = UserPolicy.StaleTimeout
	}
	return c
}

type Option func(*Cache)

func WithLogger(logger glog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Cache serves remote response bodies with a fresh window and a stale grace
// window. Stale hits are returned immediately while a single bounded
// background refresh per key runs.
type Cache struct {
	store  Store
	cfg    Config
	logger glog.Logger
	now    func() time.Time
	group  singleflight.Group
}

func New(store Store, cfg Config, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("cache: store is required")
	}
	cfg = cfg.withDefaults()
	if cfg.Policy.FreshFor < 0 || cfg.Policy.StaleFor < 0 || cfg.Policy.StaleTimeout < 0 {
		return nil, fmt.Errorf("cache: policy durations must not be negative")
	}
	c := &Cache{
		store:  store,
		cfg:    cfg,
		logger: glog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Cache) Config() Config {
	return c.cfg
}

func (c *Cache) Key(desc Descriptor) string {
	return KeyFor(c.cfg.Prefix, c.cfg.Segment, c.cfg.KeyHeaders, desc)
}

// Get returns the cached body for desc, calling fetch synchronously when the
// entry is missing or expired. Fetch errors are returned as-is and nothing is
// stored.
func (c *Cache) Get(ctx context.Context, desc Descriptor, fetch FetchFunc) ([]byte, error) {
	if fetch == nil {
		return nil, fmt.Errorf("cache: fetch function is required")
	}
	key := c.Key(desc)

	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, fetching", "key", key, "error", err)
		found = false
	}
	state := StateMissing
	if found {
		state = entry.StateAt(c.now())
	}

	switch state {
	case StateFresh:
		return entry.Value, nil
	case StateStale:
		c.revalidate(ctx, key, entry.StoredAt, fetch)
		return entry.Value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.write(ctx, key, value); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// Drop removes the entry for desc. Missing keys are not an error.
func (c *Cache) Drop(ctx context.Context, desc Descriptor) error {
	return c.store.Delete(ctx, c.Key(desc))
}

func (c *Cache) write(ctx context.Context, key string, value []byte) error {
	policy := c.cfg.Policy
	return c.store.Set(ctx, key, Entry{
		Key:      key,
		Value:    value,
		StoredAt: c.now(),
		FreshFor: policy.FreshFor,
		StaleFor: policy.StaleFor,
	}, policy.TTL())
}

func (c *Cache) revalidate(ctx context.Context, key string, observed time.Time, fetch FetchFunc) {
	parent := context.WithoutCancel(ctx)
	go func() {
		_, err, _ := c.group.Do(key, func() (any, error) {
			refreshCtx, cancel := context.WithTimeout(parent, c.cfg.Policy.StaleTimeout)
			defer cancel()

			value, err := fetch(refreshCtx)
			if err != nil {
				return nil, err
			}
			if err := refreshCtx.Err(); err != nil {
				return nil, err
			}
			current, found, err := c.store.Get(refreshCtx, key)
			if err != nil {
				return nil, err
			}
			if !found || !current.StoredAt.Equal(observed) {
				return nil, errRefreshSuperseded
			}
			return nil, c.write(refreshCtx, key, value)
		})
		switch {
		case err == nil:
			c.logger.Debug("cache refreshed", "key", key)
		case errors.Is(err, errRefreshSuperseded):
			c.logger.Debug("cache refresh discarded", "key", key)
		case errors.Is(err, context.DeadlineExceeded):
			c.logger.Debug("cache refresh abandoned after stale timeout", "key", key, "timeout", c.cfg.Policy.StaleTimeout)
		default:
			c.logger.Warn("cache refresh failed", "key", key, "error", err)
		}
	}()
}
