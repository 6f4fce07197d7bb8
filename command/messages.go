package command

import (
	"strings"

	"github.com/goliatone/go-accounts/core"
)

const (
	TypeSignup       = "accounts.command.user.signup"
	TypeSave         = "accounts.command.user.save"
	TypeConfirmEmail = "accounts.command.user.confirm_email"
	TypeDrop         = "accounts.command.user.drop"
)

type SignupMessage struct {
	User core.User
}

func (SignupMessage) Type() string { return TypeSignup }

func (m SignupMessage) Validate() error {
	if strings.TrimSpace(m.User.Name) == "" {
		return commandValidationError("name", "name is required")
	}
	if strings.TrimSpace(m.User.Email) == "" {
		return commandValidationError("email", "email is required")
	}
	return nil
}

type SaveMessage struct {
	User   core.User
	Bearer string
}

func (SaveMessage) Type() string { return TypeSave }

func (m SaveMessage) Validate() error {
	if strings.TrimSpace(m.User.Name) == "" {
		return commandValidationError("name", "name is required")
	}
	return nil
}

type ConfirmEmailMessage struct {
	User core.User
}

func (ConfirmEmailMessage) Type() string { return TypeConfirmEmail }

func (m ConfirmEmailMessage) Validate() error {
	if strings.TrimSpace(m.User.Name) == "" {
		return commandValidationError("name", "name is required")
	}
	if strings.TrimSpace(m.User.VerificationKey) == "" {
		return commandValidationError("verification_key", "verification key is required")
	}
	return nil
}

type DropMessage struct {
	Name string
}

func (DropMessage) Type() string { return TypeDrop }

func (m DropMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return commandValidationError("name", "name is required")
	}
	return nil
}
