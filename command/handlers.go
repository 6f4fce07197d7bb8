package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-accounts/core"
	gocmd "github.com/goliatone/go-command"
)

type MutatingService interface {
	Signup(ctx context.Context, user core.User) (core.SignupResult, error)
	Save(ctx context.Context, user core.User) (core.User, error)
	ConfirmEmail(ctx context.Context, user core.User) (core.User, error)
	Drop(ctx context.Context, name string) error
}

// BearerScoped is implemented by services that can issue requests on behalf
// of an authenticated caller.
type BearerScoped interface {
	WithBearer(token string) *core.Service
}

type SignupCommand struct {
	service MutatingService
}

func NewSignupCommand(service MutatingService) *SignupCommand {
	return &SignupCommand{service: service}
}

func (c *SignupCommand) Execute(ctx context.Context, msg SignupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: signup service is required")
	}
	out, err := c.service.Signup(ctx, msg.User)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SaveCommand struct {
	service MutatingService
}

func NewSaveCommand(service MutatingService) *SaveCommand {
	return &SaveCommand{service: service}
}

func (c *SaveCommand) Execute(ctx context.Context, msg SaveMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: save service is required")
	}
	out, err := scoped(c.service, msg.Bearer).Save(ctx, msg.User)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ConfirmEmailCommand struct {
	service MutatingService
}

func NewConfirmEmailCommand(service MutatingService) *ConfirmEmailCommand {
	return &ConfirmEmailCommand{service: service}
}

func (c *ConfirmEmailCommand) Execute(ctx context.Context, msg ConfirmEmailMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: confirm email service is required")
	}
	out, err := c.service.ConfirmEmail(ctx, msg.User)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DropCommand struct {
	service MutatingService
}

func NewDropCommand(service MutatingService) *DropCommand {
	return &DropCommand{service: service}
}

func (c *DropCommand) Execute(ctx context.Context, msg DropMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: drop service is required")
	}
	return c.service.Drop(ctx, msg.Name)
}

func scoped(service MutatingService, bearer string) MutatingService {
	if strings.TrimSpace(bearer) == "" {
		return service
	}
	if aware, ok := service.(BearerScoped); ok {
		return aware.WithBearer(bearer)
	}
	return service
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
