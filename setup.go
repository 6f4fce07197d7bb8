package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-accounts/cache"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/mailing"
	"github.com/goliatone/go-accounts/transport"
	"github.com/goliatone/go-accounts/userapi"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type SetupOption func(*setupOptions)

type setupOptions struct {
	configProvider core.ConfigProvider
	adapter        transport.Adapter
	httpClient     transport.HTTPDoer
	redisClient    redis.Cmdable
	cacheStore     cache.Store
	subscriber     mailing.Subscriber
	logger         glog.Logger
	tracer         trace.Tracer
	serviceOptions []core.Option
}

// WithEnvironment loads the file/env layer through provider before the
// runtime config is applied.
func WithEnvironment(provider core.ConfigProvider) SetupOption {
	return func(o *setupOptions) {
		o.configProvider = provider
	}
}

func WithTransportAdapter(adapter transport.Adapter) SetupOption {
	return func(o *setupOptions) {
		o.adapter = adapter
	}
}

func WithHTTPClient(client transport.HTTPDoer) SetupOption {
	return func(o *setupOptions) {
		o.httpClient = client
	}
}

func WithRedisClient(client redis.Cmdable) SetupOption {
	return func(o *setupOptions) {
		o.redisClient = client
	}
}

func WithCacheStore(store cache.Store) SetupOption {
	return func(o *setupOptions) {
		o.cacheStore = store
	}
}

func WithSubscriber(subscriber mailing.Subscriber) SetupOption {
	return func(o *setupOptions) {
		o.subscriber = subscriber
	}
}

func WithSetupLogger(logger glog.Logger) SetupOption {
	return func(o *setupOptions) {
		o.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) SetupOption {
	return func(o *setupOptions) {
		o.tracer = tracer
	}
}

func WithServiceOptions(opts ...core.Option) SetupOption {
	return func(o *setupOptions) {
		o.serviceOptions = append(o.serviceOptions, opts...)
	}
}

// Runtime holds a fully wired accessor and the resources it owns.
type Runtime struct {
	Config  Config
	Service *Service
	Facade  *Facade
	Cache   *cache.Cache
	Mailing *mailing.Dispatcher

	closers []func() error
}

// Close releases connections opened by Setup.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Setup resolves cfg over the defaults and wires the user API client, the
// record cache (Redis when a URL or client is given, in-process otherwise)
// and the newsletter dispatcher when a mailing key or subscriber is present.
func Setup(ctx context.Context, cfg Config, opts ...SetupOption) (*Runtime, error) {
	options := setupOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	logger := glog.Ensure(options.logger)

	defaults := core.DefaultConfig()
	loaded := Config{}
	if options.configProvider != nil {
		var err error
		if loaded, err = options.configProvider.Load(ctx, defaults); err != nil {
			return nil, err
		}
	}
	resolved, err := core.GoOptionsResolver{}.Resolve(defaults, loaded, cfg)
	if err != nil {
		return nil, err
	}

	runtime := &Runtime{Config: resolved}
	adapter := options.adapter
	if adapter == nil {
		adapter = transport.NewRESTAdapter(options.httpClient)
	}

	clientOpts := []userapi.Option{
		userapi.WithAdapter(adapter),
		userapi.WithTimeout(resolved.UserAPI.Timeout),
		userapi.WithDebug(resolved.UserAPI.Debug),
		userapi.WithLogger(logger),
	}
	if options.tracer != nil {
		clientOpts = append(clientOpts, userapi.WithTracer(options.tracer))
	}
	client, err := userapi.New(resolved.UserAPI.BaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	serviceOpts := []core.Option{core.WithUserAPI(client), core.WithLogger(logger)}

	if resolved.Cache.Active() {
		store, err := runtime.openStore(resolved.Cache, options)
		if err != nil {
			_ = runtime.Close()
			return nil, err
		}
		recordCache, err := cache.New(store, cache.Config{
			Prefix:     resolved.Cache.Prefix,
			Segment:    resolved.Cache.Segment,
			Policy:     resolved.Cache.Policy(),
			KeyHeaders: resolved.Cache.KeyHeaders,
		}, cache.WithLogger(logger))
		if err != nil {
			_ = runtime.Close()
			return nil, err
		}
		runtime.Cache = recordCache
		serviceOpts = append(serviceOpts, core.WithRecordCache(recordCache))
	}

	subscriber := options.subscriber
	if subscriber == nil && resolved.Mailing.APIKey != "" {
		subscriber, err = mailing.NewMailchimpClient(resolved.Mailing.APIKey, adapter,
			mailing.WithMailchimpTimeout(resolved.Mailing.Timeout))
		if err != nil {
			_ = runtime.Close()
			return nil, err
		}
	}
	if subscriber != nil {
		dispatcher, err := mailing.NewDispatcher(subscriber, resolved.Mailing.ListID,
			mailing.WithLogger(logger),
			mailing.WithTimeout(resolved.Mailing.Timeout))
		if err != nil {
			_ = runtime.Close()
			return nil, err
		}
		runtime.Mailing = dispatcher
		serviceOpts = append(serviceOpts, core.WithMailingDispatcher(dispatcher))
	}

	serviceOpts = append(serviceOpts, options.serviceOptions...)
	service, err := core.NewService(resolved, serviceOpts...)
	if err != nil {
		_ = runtime.Close()
		return nil, err
	}
	runtime.Service = service

	facade, err := NewFacade(service)
	if err != nil {
		_ = runtime.Close()
		return nil, err
	}
	runtime.Facade = facade
	return runtime, nil
}

func (r *Runtime) openStore(cfg core.CacheConfig, options setupOptions) (cache.Store, error) {
	switch {
	case options.cacheStore != nil:
		return options.cacheStore, nil
	case options.redisClient != nil:
		return cache.NewRedisStore(options.redisClient)
	case cfg.RedisURL != "":
		store, client, err := cache.OpenRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("accounts: open cache store: %w", err)
		}
		r.closers = append(r.closers, client.Close)
		return store, nil
	default:
		return cache.NewDefaultMemoryStore(cfg.Policy())
	}
}
