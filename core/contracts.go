package core

import (
	"context"

	"github.com/goliatone/go-accounts/cache"
	"github.com/goliatone/go-accounts/mailing"
	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger
type FieldsLogger = glog.FieldsLogger
type LoggerProvider = glog.LoggerProvider

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// UserAPI is the remote account API. Implementations return the transport
// error unchanged when the exchange fails and a *goerrors.Error carrying the
// remote status otherwise.
type UserAPI interface {
	UserOptions(name string) cache.Descriptor
	Get(ctx context.Context, name string) (User, error)
	GetRaw(ctx context.Context, name string) ([]byte, error)
	LookupEmail(ctx context.Context, email string) ([]string, error)
	Signup(ctx context.Context, user User) (User, error)
	Save(ctx context.Context, user User) (User, error)
	Login(ctx context.Context, info LoginInfo) (User, error)
	ConfirmEmail(ctx context.Context, user User) (User, error)
	GetStars(ctx context.Context, name string) ([]string, error)
	GetPackages(ctx context.Context, name string) ([]Package, error)
	WithBearer(token string) UserAPI
}

type RecordCache interface {
	Get(ctx context.Context, desc cache.Descriptor, fetch cache.FetchFunc) ([]byte, error)
	Drop(ctx context.Context, desc cache.Descriptor) error
}

type MailingDispatcher interface {
	Dispatch(ctx context.Context, email string) *mailing.Delivery
}

var (
	_ RecordCache       = (*cache.Cache)(nil)
	_ MailingDispatcher = (*mailing.Dispatcher)(nil)
)
