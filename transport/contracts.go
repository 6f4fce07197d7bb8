package transport

import (
	"context"
	"time"
)

// Request is the black-box request primitive every remote call goes through.
type Request struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
	RequestID            string
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// Adapter executes a single request. Implementations return an error only for
// transport failures; any HTTP status is a successful exchange.
type Adapter interface {
	Kind() string
	Do(ctx context.Context, req Request) (Response, error)
}
