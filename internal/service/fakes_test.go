package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/events"
	"course-marketplace/internal/metrics"
	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"
	"course-marketplace/internal/service"
	"course-marketplace/internal/testutil"

	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePaymentClient struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (f *fakePaymentClient) Name() string {
	return "fake"
}

func (f *fakePaymentClient) CreateAuthorization(ctx context.Context, amount int64, currency string) (*model.PaymentAuthorization, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	err := f.err
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return &model.PaymentAuthorization{
		ID:           fmt.Sprintf("pi_%d", n),
		ClientSecret: fmt.Sprintf("pi_%d_secret_%d", n, amount),
		Amount:       amount,
		Currency:     currency,
		Provider:     "fake",
	}, nil
}

func (f *fakePaymentClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMediaClient struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	uploadErr error
}

func (f *fakeMediaClient) Upload(_ context.Context, file io.Reader, filename string) (*model.MediaRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}

	f.uploads++
	id := fmt.Sprintf("courses/%d-%s", f.uploads, filename)
	return &model.MediaRef{
		PublicID: id,
		URL:      "https://media.example.com/" + id,
	}, nil
}

func (f *fakeMediaClient) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if publicID == "" {
		return errors.New("empty public id")
	}
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EntitlementGranted
	err    error
}

func (p *recordingPublisher) PublishEntitlementGranted(_ context.Context, event events.EntitlementGranted) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) Published() []events.EntitlementGranted {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.EntitlementGranted(nil), p.events...)
}

// marketplace wires the purchase services over a fresh sqlite database.
type marketplace struct {
	db        *gorm.DB
	payments  *fakePaymentClient
	media     *fakeMediaClient
	publisher *recordingPublisher
	catalog   service.CatalogService
	purchases service.PurchaseService
	orders    service.OrderService
	checkouts repository.CheckoutRepository
	ledger    repository.PurchaseRepository
	orderRepo repository.OrderRepository
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()

	db := testutil.NewDB(t)
	log := discardLogger()

	m := &marketplace{
		db:        db,
		payments:  &fakePaymentClient{},
		media:     &fakeMediaClient{},
		publisher: &recordingPublisher{},
		checkouts: repository.NewCheckoutRepository(db),
		ledger:    repository.NewPurchaseRepository(db),
		orderRepo: repository.NewOrderRepository(db),
	}

	m.catalog = service.NewCatalogService(repository.NewCourseRepository(db), m.media, log)
	gateway := service.NewPaymentGateway(m.payments, time.Second, metrics.Nop{}, log)
	m.purchases = service.NewPurchaseService(m.catalog, m.ledger, m.checkouts, gateway, "usd", metrics.Nop{}, log)
	m.orders = service.NewOrderService(db, m.orderRepo, m.ledger, m.checkouts, m.publisher, config.Order{
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, metrics.Nop{}, log)

	return m
}
