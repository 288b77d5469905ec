package client

import (
	"context"
	"testing"

	"course-marketplace/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentClient(t *testing.T) {
	for _, provider := range []string{config.ProviderStripe, config.ProviderPaypal, config.ProviderBraintree} {
		t.Run(provider, func(t *testing.T) {
			cfg := &config.Config{Payment: config.Payment{Provider: provider}}

			paymentClient, err := NewPaymentClient(cfg)
			require.NoError(t, err)
			assert.Equal(t, provider, paymentClient.Name())
		})
	}

	_, err := NewPaymentClient(&config.Config{Payment: config.Payment{Provider: "square"}})
	assert.EqualError(t, err, `unsupported payment provider "square"`)
}

func TestBraintreeClient_RejectsNonPositiveAmount(t *testing.T) {
	paymentClient := NewBraintreeClient(&config.Braintree{MerchantID: "m", PublicKey: "pub", PrivateKey: "priv"})

	_, err := paymentClient.CreateAuthorization(context.Background(), 0, "usd")
	assert.EqualError(t, err, "invalid amount 0.00")
}
