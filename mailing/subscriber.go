package mailing

import (
	"context"
	"fmt"
	"strings"
)

const DefaultListID = "e17fe5d778"

type Subscription struct {
	ListID string
	Email  string
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.ListID) == "" {
		return fmt.Errorf("mailing: list id is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("mailing: email is required")
	}
	return nil
}

type Subscriber interface {
	Subscribe(ctx context.Context, sub Subscription) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, sub Subscription) error

func (f SubscriberFunc) Subscribe(ctx context.Context, sub Subscription) error {
	return f(ctx, sub)
}
