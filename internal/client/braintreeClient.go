package client

import (
	"context"
	"fmt"

	"course-marketplace/internal/config"
	"course-marketplace/internal/model"

	"github.com/braintree-go/braintree-go"
	"github.com/google/uuid"
)

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) PaymentClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Name() string {
	return config.ProviderBraintree
}

// CreateAuthorization issues a client token for the Drop-in UI. Braintree tokens
// are not bound to an amount, so the amount lives on the local checkout record.
func (c *braintreeClientImpl) CreateAuthorization(ctx context.Context, amount int64, currency string) (*model.PaymentAuthorization, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invalid amount %s", model.FormatMinorUnits(amount))
	}

	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("braintree generate client token: %w", err)
	}

	return &model.PaymentAuthorization{
		ID:           uuid.NewString(),
		ClientSecret: token,
		Amount:       amount,
		Currency:     currency,
		Provider:     config.ProviderBraintree,
	}, nil
}
