package mailing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/transport"
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeSubscribeFailed = "MAILING_SUBSCRIBE_FAILED"

	defaultMailchimpDatacenter = "us1"
	defaultMailchimpTimeout    = 10 * time.Second
)

// MailchimpClient calls the v2.0 lists/subscribe endpoint. The datacenter is
// taken from the api key suffix (<key>-<dc>).
type MailchimpClient struct {
	adapter transport.Adapter
	apiKey  string
	baseURL string
	timeout time.Duration
}

type MailchimpOption func(*MailchimpClient)

func WithMailchimpBaseURL(baseURL string) MailchimpOption {
	return func(c *MailchimpClient) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithMailchimpTimeout(timeout time.Duration) MailchimpOption {
	return func(c *MailchimpClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewMailchimpClient(apiKey string, adapter transport.Adapter, opts ...MailchimpOption) (*MailchimpClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("mailing: mailchimp api key is required")
	}
	if adapter == nil {
		adapter = transport.NewRESTAdapter(nil)
	}
	client := &MailchimpClient{
		adapter: adapter,
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/2.0", datacenterFromKey(apiKey)),
		timeout: defaultMailchimpTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type subscribeRequest struct {
	APIKey      string         `json:"apikey"`
	ID          string         `json:"id"`
	Email       subscribeEmail `json:"email"`
	DoubleOptin bool           `json:"double_optin"`
}

type subscribeEmail struct {
	Email string `json:"email"`
}

type mailchimpError struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
	Name   string `json:"name"`
	Error  string `json:"error"`
}

func (c *MailchimpClient) Subscribe(ctx context.Context, sub Subscription) error {
	if err := sub.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "mailing: invalid subscription").
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeSubscribeFailed)
	}
	body, err := json.Marshal(subscribeRequest{
		APIKey: c.apiKey,
		ID:     sub.ListID,
		Email:  subscribeEmail{Email: sub.Email},
	})
	if err != nil {
		return err
	}

	res, err := c.adapter.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/lists/subscribe.json",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
		Timeout: c.timeout,
	})
	if err != nil {
		return err
	}
	if res.StatusCode < http.StatusBadRequest {
		return nil
	}

	metadata := map[string]any{
		"list_id":     sub.ListID,
		"status_code": res.StatusCode,
	}
	var remote mailchimpError
	if json.Unmarshal(res.Body, &remote) == nil && remote.Error != "" {
		metadata["remote_error"] = remote.Error
		metadata["remote_name"] = remote.Name
	}
	return goerrors.New(
		fmt.Sprintf("mailing: could not subscribe %s to list %s", sub.Email, sub.ListID),
		goerrors.CategoryExternal,
	).
		WithCode(res.StatusCode).
		WithTextCode(TextCodeSubscribeFailed).
		WithMetadata(metadata)
}

func datacenterFromKey(apiKey string) string {
	if idx := strings.LastIndex(apiKey, "-"); idx >= 0 && idx < len(apiKey)-1 {
		return apiKey[idx+1:]
	}
	return defaultMailchimpDatacenter
}

var _ Subscriber = (*MailchimpClient)(nil)
