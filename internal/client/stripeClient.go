package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/model"

	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
)

type stripeClientImpl struct {
	api *stripeclient.API
}

func NewStripeClient(cfg *config.Stripe) PaymentClient {
	backendCfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// retries are the caller's decision
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &stripeClientImpl{
		api: api,
	}
}

func (c *stripeClientImpl) Name() string {
	return config.ProviderStripe
}

func (c *stripeClientImpl) CreateAuthorization(ctx context.Context, amount int64, currency string) (*model.PaymentAuthorization, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		// let Stripe offer card, wallets and whatever else the account has enabled
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("stripe payment intent %s has no client secret", intent.ID)
	}

	return &model.PaymentAuthorization{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
		Provider:     config.ProviderStripe,
	}, nil
}
