package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"course-marketplace/internal/client"
	"course-marketplace/internal/metrics"
	"course-marketplace/internal/model"
)

// PaymentGateway asks the configured processor for a payment authorization.
// It never writes local state.
type PaymentGateway interface {
	Provider() string
	Authorize(ctx context.Context, amount int64, currency string) (*model.PaymentAuthorization, error)
}

type paymentGatewayImpl struct {
	client  client.PaymentClient
	timeout time.Duration
	metrics metrics.Recorder
	log     *slog.Logger
}

func NewPaymentGateway(
	paymentClient client.PaymentClient,
	timeout time.Duration,
	recorder metrics.Recorder,
	log *slog.Logger,
) PaymentGateway {
	return &paymentGatewayImpl{
		client:  paymentClient,
		timeout: timeout,
		metrics: recorder,
		log:     log,
	}
}

func (g *paymentGatewayImpl) Provider() string {
	return g.client.Name()
}

func (g *paymentGatewayImpl) Authorize(ctx context.Context, amount int64, currency string) (*model.PaymentAuthorization, error) {
	if amount <= 0 {
		return nil, model.NewGatewayError(fmt.Errorf("invalid amount %d", amount))
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	auth, err := g.client.CreateAuthorization(ctx, amount, strings.ToLower(currency))
	if err == nil && (auth == nil || auth.ClientSecret == "") {
		err = errors.New("processor returned no client handle")
	}
	g.metrics.RecordGatewayCall(g.client.Name(), time.Since(start), err)

	if err != nil {
		g.log.Error("payment authorization failed",
			slog.String("provider", g.client.Name()),
			slog.Int64("amount", amount),
			slog.Any("error", err),
		)
		return nil, model.NewGatewayError(fmt.Errorf("%s create authorization: %w", g.client.Name(), err))
	}

	return auth, nil
}
