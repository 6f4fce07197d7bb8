package accounts

import (
	"fmt"

	accountscommand "github.com/goliatone/go-accounts/command"
	accountsquery "github.com/goliatone/go-accounts/query"
)

type CommandQueryService interface {
	accountscommand.MutatingService
	accountsquery.UserReader
}

type Commands struct {
	Signup       *accountscommand.SignupCommand
	Save         *accountscommand.SaveCommand
	ConfirmEmail *accountscommand.ConfirmEmailCommand
	Drop         *accountscommand.DropCommand
}

type Queries struct {
	GetUser     *accountsquery.GetUserQuery
	LookupEmail *accountsquery.LookupEmailQuery
	Login       *accountsquery.LoginQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("accounts: command/query service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		Signup:       accountscommand.NewSignupCommand(service),
		Save:         accountscommand.NewSaveCommand(service),
		ConfirmEmail: accountscommand.NewConfirmEmailCommand(service),
		Drop:         accountscommand.NewDropCommand(service),
	}
	facade.queries = Queries{
		GetUser:     accountsquery.NewGetUserQuery(service),
		LookupEmail: accountsquery.NewLookupEmailQuery(service),
		Login:       accountsquery.NewLoginQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
