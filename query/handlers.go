package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-accounts/core"
)

type UserReader interface {
	Get(ctx context.Context, name string, options core.GetOptions) (core.User, error)
	LookupEmail(ctx context.Context, email string) ([]string, error)
	Login(ctx context.Context, info core.LoginInfo) (core.User, error)
}

// BearerScoped is implemented by readers that can load data visible only to
// an authenticated caller.
type BearerScoped interface {
	WithBearer(token string) *core.Service
}

type GetUserQuery struct {
	reader UserReader
}

func NewGetUserQuery(reader UserReader) *GetUserQuery {
	return &GetUserQuery{reader: reader}
}

func (q *GetUserQuery) Query(ctx context.Context, msg GetUserMessage) (core.User, error) {
	if q == nil || q.reader == nil {
		return core.User{}, queryDependencyError("query: user reader is required")
	}
	reader := q.reader
	if strings.TrimSpace(msg.Bearer) != "" {
		if aware, ok := reader.(BearerScoped); ok {
			reader = aware.WithBearer(msg.Bearer)
		}
	}
	return reader.Get(ctx, msg.Name, msg.Options)
}

type LookupEmailQuery struct {
	reader UserReader
}

func NewLookupEmailQuery(reader UserReader) *LookupEmailQuery {
	return &LookupEmailQuery{reader: reader}
}

func (q *LookupEmailQuery) Query(ctx context.Context, msg LookupEmailMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: user reader is required")
	}
	return q.reader.LookupEmail(ctx, msg.Email)
}

type LoginQuery struct {
	reader UserReader
}

func NewLoginQuery(reader UserReader) *LoginQuery {
	return &LoginQuery{reader: reader}
}

func (q *LoginQuery) Query(ctx context.Context, msg LoginMessage) (core.User, error) {
	if q == nil || q.reader == nil {
		return core.User{}, queryDependencyError("query: user reader is required")
	}
	return q.reader.Login(ctx, msg.Info)
}
