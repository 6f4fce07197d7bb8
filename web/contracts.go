package web

import (
	"net/http"

	"github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/query"
	gocmd "github.com/goliatone/go-command"
)

const (
	TemplateProfile     = "user/profile"
	TemplateProfileEdit = "user/profile-edit"
	TemplateNotFound    = "errors/not-found"
	TemplateInternal    = "errors/internal"
)

// Session identifies the logged in caller.
type Session struct {
	Name   string
	Email  string
	Bearer string
}

type SessionResolver interface {
	Resolve(r *http.Request) (Session, bool)
}

type CSRFVerifier interface {
	Verify(r *http.Request) bool
}

// Renderer writes template with context and status to w.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, template string, context map[string]any) error
}

type (
	UserQuerier  = gocmd.Querier[query.GetUserMessage, core.User]
	SaveExecutor = gocmd.Commander[command.SaveMessage]
	DropExecutor = gocmd.Commander[command.DropMessage]
)
