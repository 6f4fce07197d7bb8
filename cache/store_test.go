package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kylelemons/godebug/pretty"
	"github.com/redis/go-redis/v9"
)

func sampleEntry() Entry {
	return Entry{
		Key:      "cache:user:abc",
		Value:    []byte(`{"name":"bob"}`),
		StoredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		FreshFor: 5 * time.Minute,
		StaleFor: time.Hour,
	}
}

func TestRedisStore_RoundTripAndDelete(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client)
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "cache:user:abc"); err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	want := sampleEntry()
	if err := store.Set(ctx, want.Key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := store.Get(ctx, want.Key)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	got.StoredAt = got.StoredAt.UTC()
	if diff := pretty.Compare(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, want.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, want.Key); found {
		t.Fatalf("expected deleted key to miss")
	}
	if err := store.Delete(ctx, want.Key); err != nil {
		t.Fatalf("expected deleting missing key to succeed, got %v", err)
	}
}

func TestRedisStore_TTLIsGarbageCollection(t *testing.T) {
	server := miniredis.RunT(t)
	store, client, err := OpenRedisStore("redis://" + server.Addr() + "/0")
	if err != nil {
		t.Fatalf("open redis store: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	entry := sampleEntry()
	if err := store.Set(context.Background(), entry.Key, entry, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	server.FastForward(2 * time.Minute)
	if _, found, _ := store.Get(context.Background(), entry.Key); found {
		t.Fatalf("expected key collected after backend ttl")
	}
}

func TestOpenRedisStore_RejectsBadURL(t *testing.T) {
	if _, _, err := OpenRedisStore(""); err == nil {
		t.Fatalf("expected empty url error")
	}
	if _, _, err := OpenRedisStore("not-a-redis-url"); err == nil {
		t.Fatalf("expected invalid url error")
	}
}

func TestRedisStore_BacksStaleCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, _ := NewRedisStore(client)

	clock := newFakeClock()
	c := newTestCache(t, store, clock, nil)
	calls := 0
	fetch := func(context.Context) ([]byte, error) {
		calls++
		return []byte("bob"), nil
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), bobDescriptor, fetch); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected redis-backed cache to serve fresh hits, fetches=%d", calls)
	}
	if !server.Exists(c.Key(bobDescriptor)) {
		t.Fatalf("expected entry stored under namespaced key")
	}
}

func TestMemoryStore_RoundTripAndDelete(t *testing.T) {
	store, err := NewDefaultMemoryStore(UserPolicy)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "cache:user:abc"); err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	want := sampleEntry()
	if err := store.Set(ctx, want.Key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := store.Get(ctx, want.Key)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	updated := want
	updated.Value = []byte(`{"name":"bobby"}`)
	if err := store.Set(ctx, want.Key, updated, time.Minute); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = store.Get(ctx, want.Key)
	if string(got.Value) != `{"name":"bobby"}` {
		t.Fatalf("expected overwritten value, got %q", string(got.Value))
	}

	if err := store.Delete(ctx, want.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, want.Key); found {
		t.Fatalf("expected deleted key to miss")
	}
}

func TestMemoryStoreConfig_DisablesSturdycRefresh(t *testing.T) {
	config := memoryStoreConfig(UserPolicy)
	if config.EarlyRefresh != nil {
		t.Fatalf("expected early refresh disabled, got %#v", config.EarlyRefresh)
	}
	if config.MissingRecordStorage {
		t.Fatalf("expected missing record storage disabled")
	}
	if config.TTL != UserPolicy.TTL() {
		t.Fatalf("expected ttl %s, got %s", UserPolicy.TTL(), config.TTL)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
}

// sturdyc's stock sync refresh fires 30s after a write.
func TestMemoryStore_EntrySurvivesSturdycRefreshHorizon(t *testing.T) {
	if testing.Short() {
		t.Skip("waits past the sturdyc refresh horizon")
	}
	store, err := NewDefaultMemoryStore(UserPolicy)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	ctx := context.Background()
	want := sampleEntry()
	if err := store.Set(ctx, want.Key, want, UserPolicy.TTL()); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(31 * time.Second)

	got, found, err := store.Get(ctx, want.Key)
	if err != nil || !found {
		t.Fatalf("expected entry to survive, found=%v err=%v", found, err)
	}
	if string(got.Value) != string(want.Value) {
		t.Fatalf("expected stored value, got %q", string(got.Value))
	}
}

func TestMemoryStore_CacheWalksFreshStaleExpired(t *testing.T) {
	store, err := NewDefaultMemoryStore(UserPolicy)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	clock := newFakeClock()
	c, err := New(store, Config{Policy: UserPolicy}, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		n := calls.Add(1)
		return []byte{'v', byte('0' + n)}, nil
	}

	if _, err := c.Get(ctx, bobDescriptor, fetch); err != nil {
		t.Fatalf("prime: %v", err)
	}
	for _, step := range []time.Duration{12 * time.Second, 13 * time.Second, 10 * time.Second, 4 * time.Minute} {
		clock.Advance(step)
		value, err := c.Get(ctx, bobDescriptor, fetch)
		if err != nil {
			t.Fatalf("fresh get: %v", err)
		}
		if string(value) != "v1" {
			t.Fatalf("expected fresh value v1, got %q", string(value))
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 remote call inside fresh window, got %d", got)
	}

	clock.Advance(5 * time.Minute)
	value, err := c.Get(ctx, bobDescriptor, fetch)
	if err != nil {
		t.Fatalf("stale get: %v", err)
	}
	if string(value) != "v1" {
		t.Fatalf("expected stale value served, got %q", string(value))
	}
	waitFor(t, "background refresh", func() bool {
		entry, found, _ := store.Get(ctx, c.Key(bobDescriptor))
		return found && string(entry.Value) == "v2"
	})

	clock.Advance(2 * time.Hour)
	value, err = c.Get(ctx, bobDescriptor, fetch)
	if err != nil {
		t.Fatalf("expired get: %v", err)
	}
	if string(value) != "v3" {
		t.Fatalf("expected expired entry refetched, got %q", string(value))
	}
}

func TestNewMemoryStore_RequiresService(t *testing.T) {
	if _, err := NewMemoryStore(nil); err == nil {
		t.Fatalf("expected missing service error")
	}
}
