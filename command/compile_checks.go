package command

import (
	"github.com/goliatone/go-accounts/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[SignupMessage]       = (*SignupCommand)(nil)
	_ gocmd.Commander[SaveMessage]         = (*SaveCommand)(nil)
	_ gocmd.Commander[ConfirmEmailMessage] = (*ConfirmEmailCommand)(nil)
	_ gocmd.Commander[DropMessage]         = (*DropCommand)(nil)

	_ MutatingService = (*core.Service)(nil)
)
