package client

import (
	"context"
	"fmt"

	"course-marketplace/internal/config"
	"course-marketplace/internal/model"
)

// PaymentClient creates a payment authorization on an external processor.
type PaymentClient interface {
	// Name is the provider name recorded on checkouts.
	Name() string

	// CreateAuthorization asks the processor for a handle the client can use to
	// complete a charge of amount (minor units) in currency.
	CreateAuthorization(ctx context.Context, amount int64, currency string) (*model.PaymentAuthorization, error)
}

// NewPaymentClient builds the client for the configured provider.
func NewPaymentClient(cfg *config.Config) (PaymentClient, error) {
	switch cfg.Payment.Provider {
	case config.ProviderStripe:
		return NewStripeClient(&cfg.Stripe), nil
	case config.ProviderPaypal:
		return NewPaypalClient(&cfg.Paypal), nil
	case config.ProviderBraintree:
		return NewBraintreeClient(&cfg.BrainTree), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Payment.Provider)
	}
}
