package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/goliatone/go-accounts/cache"
	"github.com/goliatone/go-accounts/mailing"
)

type stubUserAPI struct {
	mu         sync.Mutex
	bearer     string
	users      map[string]User
	stars      map[string][]string
	packages   map[string][]Package
	emails     map[string][]string
	passwords  map[string]string
	calls      map[string]int
	bearerSeen map[string]string
	signupErr  error
	saved      []User
	shared     *stubUserAPI
}

func newStubUserAPI() *stubUserAPI {
	return &stubUserAPI{
		users:      map[string]User{},
		stars:      map[string][]string{},
		packages:   map[string][]Package{},
		emails:     map[string][]string{},
		passwords:  map[string]string{},
		calls:      map[string]int{},
		bearerSeen: map[string]string{},
	}
}

func (s *stubUserAPI) root() *stubUserAPI {
	if s.shared != nil {
		return s.shared
	}
	return s
}

func (s *stubUserAPI) record(call string) {
	root := s.root()
	root.calls[call]++
	root.bearerSeen[call] = s.bearer
}

func (s *stubUserAPI) callCount(call string) int {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	return root.calls[call]
}

func (s *stubUserAPI) UserOptions(name string) cache.Descriptor {
	return cache.Descriptor{Method: http.MethodGet, URL: "https://user-api-example.com/user/" + name, JSON: true}
}

func (s *stubUserAPI) Get(ctx context.Context, name string) (User, error) {
	raw, err := s.GetRaw(ctx, name)
	if err != nil {
		return User{}, err
	}
	return DecodeUser(raw)
}

func (s *stubUserAPI) GetRaw(_ context.Context, name string) ([]byte, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("get")
	user, ok := root.users[name]
	if !ok {
		return nil, NewNotFoundError(fmt.Sprintf("user %s not found", name), map[string]any{"name": name})
	}
	return json.Marshal(user)
}

func (s *stubUserAPI) LookupEmail(_ context.Context, email string) ([]string, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("lookup_email")
	return root.emails[email], nil
}

func (s *stubUserAPI) Signup(_ context.Context, user User) (User, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("signup")
	if root.signupErr != nil {
		return User{}, root.signupErr
	}
	user.Password = ""
	root.users[user.Name] = user
	return user, nil
}

func (s *stubUserAPI) Save(_ context.Context, user User) (User, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("save")
	root.saved = append(root.saved, user)
	root.users[user.Name] = user
	return user, nil
}

func (s *stubUserAPI) Login(_ context.Context, info LoginInfo) (User, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("login")
	password, ok := root.passwords[info.Name]
	if !ok {
		return User{}, NewNotFoundError("user "+info.Name+" not found", nil)
	}
	if password != info.Password {
		return User{}, NewIncorrectCredentialError("password is incorrect for "+info.Name, nil)
	}
	return root.users[info.Name], nil
}

func (s *stubUserAPI) ConfirmEmail(_ context.Context, user User) (User, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("confirm_email")
	return root.users[user.Name], nil
}

func (s *stubUserAPI) GetStars(_ context.Context, name string) ([]string, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("stars")
	return root.stars[name], nil
}

func (s *stubUserAPI) GetPackages(_ context.Context, name string) ([]Package, error) {
	root := s.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	s.record("packages")
	return root.packages[name], nil
}

func (s *stubUserAPI) WithBearer(token string) UserAPI {
	return &stubUserAPI{bearer: token, shared: s.root()}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	emails []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, email string) *mailing.Delivery {
	d.mu.Lock()
	d.emails = append(d.emails, email)
	d.mu.Unlock()
	dispatcher, _ := mailing.NewDispatcher(mailing.SubscriberFunc(func(context.Context, mailing.Subscription) error {
		return nil
	}), "")
	return dispatcher.Dispatch(context.Background(), email)
}

type metricCall struct {
	name string
	tags map[string]string
}

type recordingMetrics struct {
	mu       sync.Mutex
	counters []metricCall
}

func (m *recordingMetrics) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, metricCall{name: name, tags: tags})
}

func (m *recordingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type capturedLog struct {
	level   string
	message string
	args    []any
}

type capturingLogger struct {
	mu      sync.Mutex
	entries []capturedLog
}

func (l *capturingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, capturedLog{level: level, message: msg, args: args})
}

func (l *capturingLogger) Trace(msg string, args ...any) { l.add("trace", msg, args) }
func (l *capturingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *capturingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *capturingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *capturingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }
func (l *capturingLogger) Fatal(msg string, args ...any) { l.add("fatal", msg, args) }
func (l *capturingLogger) WithContext(context.Context) Logger {
	return l
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type fixedConfigProvider struct {
	cfg Config
}

func (p fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}
