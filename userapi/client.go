package userapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/cache"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/transport"
	glog "github.com/goliatone/go-logger/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HeaderBearer carries the caller's identity to the remote API.
	HeaderBearer = "bearer"

	tracerName           = "github.com/goliatone/go-accounts/userapi"
	defaultClientTimeout = 10 * time.Second
	packagesPerPage      = "9999"
)

// Client talks to the remote user API. The zero bearer means anonymous.
type Client struct {
	adapter transport.Adapter
	baseURL string
	bearer  string
	timeout time.Duration
	debug   bool
	logger  glog.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithAdapter(adapter transport.Adapter) Option {
	return func(c *Client) {
		if adapter != nil {
			c.adapter = adapter
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithDebug logs every request url at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

func WithLogger(logger glog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = core.DefaultUserAPIBaseURL
	}
	if parsed, err := url.Parse(baseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("userapi: invalid base url %q", baseURL)
	}
	client := &Client{
		adapter: transport.NewRESTAdapter(nil),
		baseURL: baseURL,
		timeout: defaultClientTimeout,
		logger:  glog.Nop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Bearer() string {
	return c.bearer
}

// WithBearer returns a copy that sends token on identity-scoped requests.
func (c *Client) WithBearer(token string) core.UserAPI {
	scoped := *c
	scoped.bearer = strings.TrimSpace(token)
	return &scoped
}

// UserOptions describes the primary record fetch. It never carries the
// identity header so all callers share one cache entry per user.
func (c *Client) UserOptions(name string) cache.Descriptor {
	return cache.Descriptor{
		Method: http.MethodGet,
		URL:    c.userURL(name),
		JSON:   true,
	}
}

func (c *Client) Get(ctx context.Context, name string) (core.User, error) {
	raw, err := c.GetRaw(ctx, name)
	if err != nil {
		return core.User{}, err
	}
	return core.DecodeUser(raw)
}

func (c *Client) GetRaw(ctx context.Context, name string) ([]byte, error) {
	desc := c.UserOptions(name)
	res, err := c.do(ctx, "get", name, transport.Request{Method: desc.Method, URL: desc.URL})
	if err != nil {
		return nil, err
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, core.NewNotFoundError(fmt.Sprintf("user %s not found", name), errorMetadata("get", name, res.StatusCode))
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, core.NewRemoteError(res.StatusCode,
			fmt.Sprintf("unexpected status code %d for user %s", res.StatusCode, name),
			errorMetadata("get", name, res.StatusCode))
	}
	return res.Body, nil
}

func (c *Client) LookupEmail(ctx context.Context, email string) ([]string, error) {
	res, err := c.do(ctx, "lookup_email", email, transport.Request{
		Method: http.MethodGet,
		URL:    c.userURL(email),
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode > 399 {
		return nil, core.NewRemoteError(res.StatusCode,
			"error looking up username(s) for "+email,
			errorMetadata("lookup_email", email, res.StatusCode))
	}
	var names []string
	if err := decodeBody(res.Body, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) Signup(ctx context.Context, user core.User) (core.User, error) {
	return c.sendUser(ctx, "signup", user.Name, http.MethodPut, c.baseURL+"/user", user,
		"error creating user "+user.Name)
}

func (c *Client) Save(ctx context.Context, user core.User) (core.User, error) {
	return c.sendUser(ctx, "save", user.Name, http.MethodPost, c.userURL(user.Name), user,
		"error updating profile for "+user.Name)
}

func (c *Client) ConfirmEmail(ctx context.Context, user core.User) (core.User, error) {
	payload := map[string]string{"verification_key": user.VerificationKey}
	return c.sendUser(ctx, "confirm_email", user.Name, http.MethodPost, c.userURL(user.Name, "verify"), payload,
		"error verifying user "+user.Name)
}

func (c *Client) Login(ctx context.Context, info core.LoginInfo) (core.User, error) {
	body, err := json.Marshal(map[string]string{"password": info.Password})
	if err != nil {
		return core.User{}, err
	}
	res, err := c.do(ctx, "login", info.Name, transport.Request{
		Method: http.MethodPost,
		URL:    c.userURL(info.Name, "login"),
		Body:   body,
	})
	if err != nil {
		return core.User{}, err
	}
	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return core.User{}, core.NewIncorrectCredentialError("password is incorrect for "+info.Name,
			errorMetadata("login", info.Name, res.StatusCode))
	case res.StatusCode == http.StatusNotFound:
		return core.User{}, core.NewNotFoundError("user "+info.Name+" not found",
			errorMetadata("login", info.Name, res.StatusCode))
	case res.StatusCode > 399:
		return core.User{}, core.NewRemoteError(res.StatusCode, "error logging in user "+info.Name,
			errorMetadata("login", info.Name, res.StatusCode))
	}
	return core.DecodeUser(res.Body)
}

func (c *Client) GetStars(ctx context.Context, name string) ([]string, error) {
	res, err := c.do(ctx, "stars", name, transport.Request{
		Method:  http.MethodGet,
		URL:     c.userURL(name, "stars"),
		Headers: c.identityHeaders(),
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode > 399 {
		return nil, core.NewRemoteError(res.StatusCode, "error getting stars for user "+name,
			errorMetadata("stars", name, res.StatusCode))
	}
	var stars []string
	if err := decodeBody(res.Body, &stars); err != nil {
		return nil, err
	}
	return stars, nil
}

func (c *Client) GetPackages(ctx context.Context, name string) ([]core.Package, error) {
	res, err := c.do(ctx, "packages", name, transport.Request{
		Method:  http.MethodGet,
		URL:     c.userURL(name, "package"),
		Query:   map[string]string{"per_page": packagesPerPage},
		Headers: c.identityHeaders(),
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode > 399 {
		return nil, core.NewRemoteError(res.StatusCode, "error getting packages for user "+name,
			errorMetadata("packages", name, res.StatusCode))
	}
	var packages []core.Package
	if err := decodeBody(res.Body, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (c *Client) sendUser(
	ctx context.Context,
	action string,
	name string,
	method string,
	target string,
	payload any,
	failure string,
) (core.User, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return core.User{}, err
	}
	res, err := c.do(ctx, action, name, transport.Request{Method: method, URL: target, Body: body})
	if err != nil {
		return core.User{}, err
	}
	if res.StatusCode > 399 {
		return core.User{}, core.NewRemoteError(res.StatusCode, failure, errorMetadata(action, name, res.StatusCode))
	}
	return core.DecodeUser(res.Body)
}

func (c *Client) do(ctx context.Context, action, subject string, req transport.Request) (transport.Response, error) {
	ctx, span := c.tracer.Start(ctx, "userapi."+action, trace.WithAttributes(
		attribute.String("account.action", action),
		attribute.String("http.method", req.Method),
		attribute.Bool("account.identified", c.bearer != ""),
	))
	defer span.End()

	if req.Timeout == 0 {
		req.Timeout = c.timeout
	}
	if c.debug {
		c.logger.WithContext(ctx).Debug("user api request", "action", action, "method", req.Method, "url", req.URL)
	}

	res, err := c.adapter.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return transport.Response{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
	if res.StatusCode > 399 {
		span.SetStatus(codes.Error, fmt.Sprintf("%s %s: status %d", action, subject, res.StatusCode))
	}
	return res, nil
}

func (c *Client) identityHeaders() map[string]string {
	if c.bearer == "" {
		return nil
	}
	return map[string]string{HeaderBearer: c.bearer}
}

func (c *Client) userURL(id string, sub ...string) string {
	parts := append([]string{c.baseURL, "user", url.PathEscape(id)}, sub...)
	return strings.Join(parts, "/")
}

func decodeBody(raw []byte, target any) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return core.NewRemoteError(http.StatusBadGateway, "userapi: decode response body", map[string]any{"error": err.Error()})
	}
	return nil
}

func errorMetadata(action, name string, status int) map[string]any {
	return map[string]any{
		"action":      action,
		"name":        name,
		"status_code": status,
	}
}

var _ core.UserAPI = (*Client)(nil)
