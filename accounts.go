// Package accounts wires the user-account accessor: the remote user API
// client, the stale-tolerant record cache, the newsletter side channel and
// the command/query facade over them.
package accounts

import "github.com/goliatone/go-accounts/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type User = core.User
type LoginInfo = core.LoginInfo
type GetOptions = core.GetOptions
type SignupResult = core.SignupResult

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithUserAPI           = core.WithUserAPI
	WithRecordCache       = core.WithRecordCache
	WithMailingDispatcher = core.WithMailingDispatcher
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
