package devkit

import (
	"context"
	"sync"

	"github.com/goliatone/go-accounts/mailing"
)

// FakeSubscriber records subscriptions instead of calling a mailing service.
type FakeSubscriber struct {
	mu            sync.Mutex
	err           error
	subscriptions []mailing.Subscription
}

func NewFakeSubscriber() *FakeSubscriber {
	return &FakeSubscriber{}
}

// FailWith makes every later Subscribe call return err.
func (s *FakeSubscriber) FailWith(err error) *FakeSubscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

func (s *FakeSubscriber) Subscribe(_ context.Context, sub mailing.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
	return s.err
}

func (s *FakeSubscriber) Subscriptions() []mailing.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailing.Subscription(nil), s.subscriptions...)
}

var _ mailing.Subscriber = (*FakeSubscriber)(nil)
