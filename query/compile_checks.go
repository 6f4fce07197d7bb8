package query

import (
	"github.com/goliatone/go-accounts/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[GetUserMessage, core.User]    = (*GetUserQuery)(nil)
	_ gocmd.Querier[LookupEmailMessage, []string] = (*LookupEmailQuery)(nil)
	_ gocmd.Querier[LoginMessage, core.User]      = (*LoginQuery)(nil)

	_ UserReader   = (*core.Service)(nil)
	_ BearerScoped = (*core.Service)(nil)
)
