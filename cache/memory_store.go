package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

var errMemoryMiss = errors.New("cache: memory store miss")

// MemoryStore keeps entries in-process through a repository cache service.
// The service applies its own configured TTL; the per-call ttl is advisory.
type MemoryStore struct {
	cache repositorycache.CacheService
}

func NewMemoryStore(service repositorycache.CacheService) (*MemoryStore, error) {
	if service == nil {
		return nil, fmt.Errorf("cache: memory cache service is required")
	}
	return &MemoryStore{cache: service}, nil
}

// NewDefaultMemoryStore builds a MemoryStore whose garbage-collection TTL
// covers the policy's fresh and stale windows.
func NewDefaultMemoryStore(policy Policy) (*MemoryStore, error) {
	service, err := repositorycache.NewCacheService(memoryStoreConfig(policy))
	if err != nil {
		return nil, fmt.Errorf("cache: new memory cache service: %w", err)
	}
	return NewMemoryStore(service)
}

// memoryStoreConfig turns off sturdyc early refreshes and missing-record
// storage. Both would re-run the miss closure inside Get and drop live
// entries; freshness is decided by Entry.StoredAt alone.
func memoryStoreConfig(policy Policy) repositorycache.Config {
	config := repositorycache.DefaultConfig()
	config.EarlyRefresh = nil
	config.MissingRecordStorage = false
	if ttl := policy.TTL(); ttl > 0 {
		config.TTL = ttl
	}
	return config
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, key, func(context.Context) (Entry, error) {
		return Entry{}, errMemoryMiss
	})
	if errors.Is(err, errMemoryMiss) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry.clone(), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry, _ time.Duration) error {
	stored := entry.clone()
	for attempt := 0; attempt < 2; attempt++ {
		if err := s.cache.Delete(ctx, key); err != nil {
			return err
		}
		_, err := repositorycache.GetOrFetch(ctx, s.cache, key, func(context.Context) (Entry, error) {
			return stored, nil
		})
		if err == nil {
			return nil
		}
		// a concurrent miss lookup for the same key can win the in-flight call
		if !errors.Is(err, errMemoryMiss) {
			return err
		}
	}
	return fmt.Errorf("cache: memory store set %s: lost race with concurrent lookup", key)
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}

var _ Store = (*MemoryStore)(nil)
