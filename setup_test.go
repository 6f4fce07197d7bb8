package accounts

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-accounts/config"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/devkit"
	glog "github.com/goliatone/go-logger/glog"
)

func newFakeRemote() *devkit.FakeTransportAdapter {
	return devkit.NewFakeTransportAdapter("rest").
		Handle(http.MethodGet, "/user/bob", devkit.JSONResponse(http.StatusOK, map[string]any{
			"name":  "bob",
			"email": "bob@example.com",
		})).
		Handle(http.MethodGet, "/user/bob/stars", devkit.JSONResponse(http.StatusOK, []string{"lodash"})).
		Handle(http.MethodGet, "/user/bob/package", devkit.JSONResponse(http.StatusOK, []map[string]string{
			{"name": "foo", "description": "a foo"},
		})).
		Handle(http.MethodPut, "/user", devkit.JSONResponse(http.StatusCreated, map[string]any{
			"name":  "bob",
			"email": "bob@example.com",
		}))
}

func TestSetup_InMemoryCacheServesRepeatReads(t *testing.T) {
	remote := newFakeRemote()
	rt, err := Setup(context.Background(), Config{Cache: core.CacheConfig{Enabled: true}},
		WithTransportAdapter(remote),
		WithSetupLogger(glog.Nop()),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.Cache == nil {
		t.Fatalf("expected cache to be wired")
	}
	for range 3 {
		user, err := rt.Service.Get(context.Background(), "bob", core.GetOptions{})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if user.Email != "bob@example.com" || user.Avatar == nil {
			t.Fatalf("unexpected decorated user %#v", user)
		}
	}
	if got := remote.Count(http.MethodGet, "/user/bob"); got != 1 {
		t.Fatalf("expected one remote fetch, got %d", got)
	}

	if err := rt.Service.Drop(context.Background(), "bob"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := rt.Service.Get(context.Background(), "bob", core.GetOptions{}); err != nil {
		t.Fatalf("get after drop: %v", err)
	}
	if got := remote.Count(http.MethodGet, "/user/bob"); got != 2 {
		t.Fatalf("expected refetch after drop, got %d fetches", got)
	}
}

func TestSetup_RedisCacheFromURL(t *testing.T) {
	server := miniredis.RunT(t)
	remote := newFakeRemote()
	rt, err := Setup(context.Background(), Config{Cache: core.CacheConfig{
		Enabled:  true,
		RedisURL: "redis://" + server.Addr(),
	}}, WithTransportAdapter(remote))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := rt.Service.Get(context.Background(), "bob", core.GetOptions{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(server.Keys()) != 1 {
		t.Fatalf("expected one redis key, got %v", server.Keys())
	}
	ttl := server.TTL(server.Keys()[0])
	if ttl != time.Hour+5*time.Minute {
		t.Fatalf("expected gc ttl of fresh+stale, got %s", ttl)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSetup_CacheDisabledGoesDirect(t *testing.T) {
	remote := newFakeRemote()
	rt, err := Setup(context.Background(), Config{}, WithTransportAdapter(remote))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if rt.Cache != nil || rt.Mailing != nil {
		t.Fatalf("expected no cache and no mailing by default")
	}
	for range 2 {
		if _, err := rt.Service.Get(context.Background(), "bob", core.GetOptions{}); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if got := remote.Count(http.MethodGet, "/user/bob"); got != 2 {
		t.Fatalf("expected every read to hit the remote, got %d", got)
	}
}

func TestSetup_SignupDispatchesNewsletter(t *testing.T) {
	subscriber := devkit.NewFakeSubscriber()
	rt, err := Setup(context.Background(), Config{}, WithTransportAdapter(newFakeRemote()), WithSubscriber(subscriber))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := rt.Service.Signup(context.Background(), core.User{
		Name:      "bob",
		Email:     "bob@example.com",
		NPMWeekly: "on",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.Newsletter == nil {
		t.Fatalf("expected newsletter delivery handle")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := result.Newsletter.Wait(ctx); err != nil {
		t.Fatalf("newsletter delivery: %v", err)
	}
	subs := subscriber.Subscriptions()
	if len(subs) != 1 || subs[0].Email != "bob@example.com" || subs[0].ListID != "e17fe5d778" {
		t.Fatalf("unexpected subscriptions %#v", subs)
	}
}

func TestSetup_EnvironmentLayerBelowRuntime(t *testing.T) {
	env := config.EnvLoader{Environment: map[string]string{
		"USER_API":  "https://envy.example.test",
		"USE_CACHE": "1",
	}}
	rt, err := Setup(context.Background(), Config{UserAPI: core.UserAPIConfig{Timeout: 2 * time.Second}},
		WithEnvironment(core.NewCfgxConfigProvider(env)),
		WithTransportAdapter(newFakeRemote()),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.Config.UserAPI.BaseURL != "https://envy.example.test" {
		t.Fatalf("expected env base url, got %q", rt.Config.UserAPI.BaseURL)
	}
	if !rt.Config.Cache.Enabled || rt.Cache == nil {
		t.Fatalf("expected USE_CACHE to enable the cache")
	}
	if rt.Config.UserAPI.Timeout != 2*time.Second {
		t.Fatalf("expected runtime timeout to win, got %s", rt.Config.UserAPI.Timeout)
	}
}

func TestSetup_RuntimeDisablesCacheOverEnvironment(t *testing.T) {
	remote := newFakeRemote()
	env := config.EnvLoader{Environment: map[string]string{"USE_CACHE": "1"}}
	rt, err := Setup(context.Background(), Config{Cache: core.CacheConfig{Disabled: true}},
		WithEnvironment(core.NewCfgxConfigProvider(env)),
		WithTransportAdapter(remote),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.Cache != nil {
		t.Fatalf("expected runtime disabled flag to win over USE_CACHE")
	}
	for range 2 {
		if _, err := rt.Service.Get(context.Background(), "bob", core.GetOptions{}); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if got := remote.Count(http.MethodGet, "/user/bob"); got != 2 {
		t.Fatalf("expected direct remote reads, got %d", got)
	}
}

func TestSetup_DisableStaleDropsGraceWindow(t *testing.T) {
	server := miniredis.RunT(t)
	env := config.EnvLoader{Environment: map[string]string{
		"USE_CACHE":       "1",
		"CACHE_STALE_TTL": "2h",
	}}
	rt, err := Setup(context.Background(), Config{Cache: core.CacheConfig{
		DisableStale: true,
		RedisURL:     "redis://" + server.Addr(),
	}},
		WithEnvironment(core.NewCfgxConfigProvider(env)),
		WithTransportAdapter(newFakeRemote()),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.Config.Cache.StaleTTL != 0 {
		t.Fatalf("expected stale window zeroed, got %s", rt.Config.Cache.StaleTTL)
	}
	if _, err := rt.Service.Get(context.Background(), "bob", core.GetOptions{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if ttl := server.TTL(server.Keys()[0]); ttl != 5*time.Minute {
		t.Fatalf("expected gc ttl of the fresh window only, got %s", ttl)
	}
}

func TestSetup_RejectsInvalidBaseURL(t *testing.T) {
	_, err := Setup(context.Background(), Config{UserAPI: core.UserAPIConfig{BaseURL: "not a url"}})
	if err == nil {
		t.Fatalf("expected invalid base url error")
	}
}
