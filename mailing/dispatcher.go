package mailing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

const defaultDispatchTimeout = 10 * time.Second

// Delivery is the handle for one asynchronous subscription attempt.
type Delivery struct {
	ID     string
	ListID string
	Email  string

	done chan struct{}
	once sync.Once
	err  error
}

func newDelivery(listID, email string) *Delivery {
	return &Delivery{
		ID:     uuid.NewString(),
		ListID: listID,
		Email:  email,
		done:   make(chan struct{}),
	}
}

func (d *Delivery) finish(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// Done is closed once the attempt has finished.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Err returns the attempt's outcome. It is nil until Done is closed.
func (d *Delivery) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}

// Wait blocks until the attempt finishes or ctx is done.
func (d *Delivery) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger glog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// Dispatcher runs subscriptions on their own goroutine, detached from the
// caller's cancellation and bounded by its own timeout.
type Dispatcher struct {
	subscriber Subscriber
	listID     string
	timeout    time.Duration
	logger     glog.Logger
}

func NewDispatcher(subscriber Subscriber, listID string, opts ...DispatcherOption) (*Dispatcher, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("mailing: subscriber is required")
	}
	listID = strings.TrimSpace(listID)
	if listID == "" {
		listID = DefaultListID
	}
	d := &Dispatcher{
		subscriber: subscriber,
		listID:     listID,
		timeout:    defaultDispatchTimeout,
		logger:     glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

func (d *Dispatcher) ListID() string {
	return d.listID
}

func (d *Dispatcher) Dispatch(ctx context.Context, email string) *Delivery {
	delivery := newDelivery(d.listID, strings.TrimSpace(email))
	parent := context.WithoutCancel(ctx)

	go func() {
		runCtx, cancel := context.WithTimeout(parent, d.timeout)
		defer cancel()

		err := d.subscriber.Subscribe(runCtx, Subscription{ListID: delivery.ListID, Email: delivery.Email})
		if err != nil {
			d.logger.Error("could not register user for mailing list",
				"delivery_id", delivery.ID,
				"list_id", delivery.ListID,
				"email", delivery.Email,
				"error", err,
			)
		} else {
			d.logger.Debug("registered user for mailing list",
				"delivery_id", delivery.ID,
				"list_id", delivery.ListID,
			)
		}
		delivery.finish(err)
	}()

	return delivery
}
