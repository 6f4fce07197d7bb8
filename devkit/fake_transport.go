package devkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-accounts/transport"
)

type TransportScript struct {
	Response transport.Response
	Err      error
}

// JSONResponse scripts a response whose body is value encoded as JSON.
func JSONResponse(status int, value any) TransportScript {
	body, err := json.Marshal(value)
	if err != nil {
		return TransportScript{Err: fmt.Errorf("devkit: encode scripted body: %w", err)}
	}
	return TransportScript{Response: transport.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}}
}

// StatusResponse scripts an empty response carrying only a status code.
func StatusResponse(status int) TransportScript {
	return TransportScript{Response: transport.Response{StatusCode: status}}
}

type route struct {
	method string
	path   string
	script TransportScript
}

// FakeTransportAdapter replays scripted responses. Routes registered with
// Handle take precedence; unmatched requests consume the sequential scripts,
// repeating the last one once exhausted.
type FakeTransportAdapter struct {
	mu       sync.Mutex
	kind     string
	routes   []route
	scripts  []TransportScript
	sequence int
	requests []transport.Request
}

func NewFakeTransportAdapter(kind string, scripts ...TransportScript) *FakeTransportAdapter {
	return &FakeTransportAdapter{
		kind:    strings.TrimSpace(strings.ToLower(kind)),
		scripts: append([]TransportScript(nil), scripts...),
	}
}

// Handle answers method requests whose URL path equals path with script.
// Registering the same route again replaces the previous script.
func (a *FakeTransportAdapter) Handle(method, path string, script TransportScript) *FakeTransportAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	method = strings.ToUpper(strings.TrimSpace(method))
	for i := range a.routes {
		if a.routes[i].method == method && a.routes[i].path == path {
			a.routes[i].script = script
			return a
		}
	}
	a.routes = append(a.routes, route{method: method, path: path, script: script})
	return a
}

func (a *FakeTransportAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

func (a *FakeTransportAdapter) Do(_ context.Context, req transport.Request) (transport.Response, error) {
	if a == nil {
		return transport.Response{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, cloneTransportRequest(req))
	if script, ok := a.match(req); ok {
		return cloneTransportResponse(script.Response), script.Err
	}
	if a.sequence < len(a.scripts) {
		script := a.scripts[a.sequence]
		a.sequence++
		return cloneTransportResponse(script.Response), script.Err
	}
	if len(a.scripts) > 0 {
		last := a.scripts[len(a.scripts)-1]
		return cloneTransportResponse(last.Response), last.Err
	}
	return transport.Response{
		StatusCode: http.StatusNotFound,
		Headers:    map[string]string{},
		Metadata:   map[string]any{"kind": a.kind},
	}, nil
}

func (a *FakeTransportAdapter) match(req transport.Request) (TransportScript, bool) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := req.URL
	if parsed, err := url.Parse(req.URL); err == nil {
		path = parsed.EscapedPath()
	}
	for _, candidate := range a.routes {
		if candidate.method == method && candidate.path == path {
			return candidate.script, true
		}
	}
	return TransportScript{}, false
}

func (a *FakeTransportAdapter) Requests() []transport.Request {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]transport.Request, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// Count reports how many requests hit method and path.
func (a *FakeTransportAdapter) Count(method, path string) int {
	count := 0
	for _, req := range a.Requests() {
		if !strings.EqualFold(req.Method, method) {
			continue
		}
		if parsed, err := url.Parse(req.URL); err == nil && parsed.EscapedPath() == path {
			count++
		}
	}
	return count
}

func cloneTransportRequest(in transport.Request) transport.Request {
	out := transport.Request{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              map[string]string{},
		Query:                map[string]string{},
		Body:                 append([]byte(nil), in.Body...),
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
		RequestID:            in.RequestID,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Query {
		out.Query[key] = value
	}
	return out
}

func cloneTransportResponse(in transport.Response) transport.Response {
	out := transport.Response{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ transport.Adapter = (*FakeTransportAdapter)(nil)
