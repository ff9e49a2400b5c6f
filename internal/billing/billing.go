// Package billing creates payment provider customers for new users.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// CustomerCreator registers a user with the payment provider and returns the customer id.
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
}

type customerAPI interface {
	New(params *stripe.CustomerParams) (*stripe.Customer, error)
}

// StripeCustomers creates Stripe customers.
type StripeCustomers struct {
	customers customerAPI
}

// NewStripeCustomers returns a CustomerCreator using the Stripe secret key.
func NewStripeCustomers(secretKey string) (*StripeCustomers, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	return &StripeCustomers{customers: client.New(secretKey, nil).Customers}, nil
}

// CreateCustomer creates a customer tagged with the user's id.
func (s *StripeCustomers) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Metadata: map[string]string{"user_id": userID},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx

	customer, err := s.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	return customer.ID, nil
}

// NoopCustomers is used when billing is not configured. It creates no customer.
type NoopCustomers struct{}

func (NoopCustomers) CreateCustomer(context.Context, string, string) (string, error) {
	return "", nil
}
