package query

import (
	"strings"

	"github.com/goliatone/go-accounts/core"
)

const (
	TypeGetUser     = "accounts.query.user.get"
	TypeLookupEmail = "accounts.query.user.lookup_email"
	TypeLogin       = "accounts.query.user.login"
)

type GetUserMessage struct {
	Name    string
	Options core.GetOptions
	Bearer  string
}

func (GetUserMessage) Type() string { return TypeGetUser }

func (m GetUserMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return queryValidationError("name", "name is required")
	}
	return nil
}

type LookupEmailMessage struct {
	Email string
}

func (LookupEmailMessage) Type() string { return TypeLookupEmail }

func (m LookupEmailMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return queryValidationError("email", "email is required")
	}
	return nil
}

type LoginMessage struct {
	Info core.LoginInfo
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Info.Name) == "" {
		return queryValidationError("name", "name is required")
	}
	if m.Info.Password == "" {
		return queryValidationError("password", "password is required")
	}
	return nil
}
