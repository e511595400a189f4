package external

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrIntentNotFound = errors.New("payment intent not found")

// PaymentIntent is the slice of a processor payment intent the API uses.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// PaymentProcessor creates and inspects payment intents.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeClient talks to the Stripe form-encoded REST API.
type StripeClient struct {
	client *resty.Client
}

func NewStripeClient(baseURL, apiKey string) *StripeClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(apiKey, "").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &StripeClient{client: c}
}

func (s *StripeClient) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := map[string]string{
		"amount":                             strconv.FormatInt(amount, 10),
		"currency":                           currency,
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var out PaymentIntent
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create payment intent: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return &out, nil
}

func (s *StripeClient) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var out PaymentIntent
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/payment_intents/{id}")
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrIntentNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get payment intent: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return &out, nil
}
