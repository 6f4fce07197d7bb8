package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/config"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/query"
	"github.com/goliatone/go-accounts/web"
	glog "github.com/goliatone/go-logger/glog"
)

type Globals struct {
	UserAPI  string `name:"user-api" help:"Base URL of the user API. Overrides USER_API."`
	UseCache bool   `name:"use-cache" help:"Serve user records through the record cache."`
	NoCache  bool   `name:"no-cache" help:"Bypass the record cache even when USE_CACHE is set."`
	NoStale  bool   `name:"no-stale" help:"Treat records past the fresh window as expired."`
	RedisURL string `name:"redis-url" help:"Redis URL for the record cache. In-process cache when empty."`
	Debug    bool   `help:"Log remote calls."`
}

type CLI struct {
	Globals

	Get    GetCmd    `cmd:"" help:"Fetch a user record."`
	Lookup LookupCmd `cmd:"" help:"List the user names registered with an email."`
	Login  LoginCmd  `cmd:"" help:"Check a user's password."`
	Drop   DropCmd   `cmd:"" help:"Invalidate the cached record for a user."`
	Serve  ServeCmd  `cmd:"" help:"Serve the profile pages."`
}

type app struct {
	runtime *accounts.Runtime
	logger  core.Logger
	out     io.Writer
	ctx     context.Context
}

func newApp(ctx context.Context, globals Globals, stdout, stderr io.Writer, environment map[string]string) (*app, error) {
	logger := glog.Nop()
	if globals.Debug {
		logger = glog.NewLogger(
			glog.WithName("accountctl"),
			glog.WithWriter(stderr),
			glog.WithLoggerTypeConsole(),
			glog.WithLevel(glog.Debug),
		)
	}
	runtimeCfg := core.Config{
		UserAPI: core.UserAPIConfig{BaseURL: globals.UserAPI, Debug: globals.Debug},
		Cache: core.CacheConfig{
			Enabled:      globals.UseCache,
			Disabled:     globals.NoCache,
			DisableStale: globals.NoStale,
			RedisURL:     globals.RedisURL,
		},
	}
	rt, err := accounts.Setup(ctx, runtimeCfg,
		accounts.WithEnvironment(core.NewCfgxConfigProvider(config.EnvLoader{Environment: environment})),
		accounts.WithSetupLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return &app{runtime: rt, logger: logger, out: stdout, ctx: ctx}, nil
}

func (a *app) Close() error {
	return a.runtime.Close()
}

func (a *app) print(value any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

type GetCmd struct {
	Name     string `arg:"" help:"User name."`
	Stars    bool   `help:"Attach starred packages."`
	Packages bool   `help:"Attach published packages."`
	Bearer   string `env:"ACCOUNT_BEARER" help:"Identity token sent with related requests."`
}

func (c *GetCmd) Run(a *app) error {
	user, err := a.runtime.Facade.Queries().GetUser.Query(a.ctx, query.GetUserMessage{
		Name:    c.Name,
		Options: core.GetOptions{Stars: c.Stars, Packages: c.Packages},
		Bearer:  c.Bearer,
	})
	if err != nil {
		return err
	}
	return a.print(user)
}

type LookupCmd struct {
	Email string `arg:"" help:"Email address."`
}

func (c *LookupCmd) Run(a *app) error {
	msg := query.LookupEmailMessage{Email: c.Email}
	if err := msg.Validate(); err != nil {
		return err
	}
	names, err := a.runtime.Facade.Queries().LookupEmail.Query(a.ctx, msg)
	if err != nil {
		return err
	}
	return a.print(names)
}

type LoginCmd struct {
	Name     string `arg:"" help:"User name."`
	Password string `env:"ACCOUNT_PASSWORD" required:"" help:"Password to check."`
}

func (c *LoginCmd) Run(a *app) error {
	user, err := a.runtime.Facade.Queries().Login.Query(a.ctx, query.LoginMessage{
		Info: core.LoginInfo{Name: c.Name, Password: c.Password},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "password ok for %s\n", user.Name)
	return nil
}

type DropCmd struct {
	Name string `arg:"" help:"User name."`
}

func (c *DropCmd) Run(a *app) error {
	if a.runtime.Cache == nil {
		fmt.Fprintln(a.out, "cache disabled, nothing to drop")
		return nil
	}
	if err := a.runtime.Facade.Commands().Drop.Execute(a.ctx, command.DropMessage{Name: c.Name}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "dropped %s\n", strings.TrimSpace(c.Name))
	return nil
}

type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address."`
}

func (c *ServeCmd) Run(a *app) error {
	handler, err := newServeHandler(a)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              c.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		a.logger.Info("profile server listening", "addr", c.Addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-a.ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func newServeHandler(a *app) (http.Handler, error) {
	commands := a.runtime.Facade.Commands()
	profiles, err := web.NewProfileHandlers(
		a.runtime.Facade.Queries().GetUser,
		commands.Save,
		commands.Drop,
		web.JSONRenderer{},
		web.HeaderSessionResolver{},
		web.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	profiles.Register(mux)
	return web.Chain(mux, web.RequestLogger(a.logger), web.Recover(a.logger)), nil
}
