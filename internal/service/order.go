package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/events"
	"course-marketplace/internal/metrics"
	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderInput struct {
	UserID    string
	CourseID  string
	Email     string
	PaymentID string
	Amount    decimal.Decimal
	Status    string
	// Payload is the raw request body, stored as-is.
	Payload []byte
}

type OrderService interface {
	CreateOrder(ctx context.Context, input OrderInput) (*model.Order, error)
}

type orderServiceImpl struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	purchaseRepo repository.PurchaseRepository
	checkoutRepo repository.CheckoutRepository
	publisher    events.Publisher
	retryCfg     config.Order
	metrics      metrics.Recorder
	log          *slog.Logger
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	purchaseRepo repository.PurchaseRepository,
	checkoutRepo repository.CheckoutRepository,
	publisher events.Publisher,
	retryCfg config.Order,
	recorder metrics.Recorder,
	log *slog.Logger,
) OrderService {
	return &orderServiceImpl{
		db:           db,
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		checkoutRepo: checkoutRepo,
		publisher:    publisher,
		retryCfg:     retryCfg,
		metrics:      recorder,
		log:          log,
	}
}

// CreateOrder stores the order and, when it names both a user and a course, the
// matching entitlement in the same transaction. Either both rows exist or neither.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, input OrderInput) (*model.Order, error) {
	order := &model.Order{
		UserID:    strings.TrimSpace(input.UserID),
		CourseID:  strings.TrimSpace(input.CourseID),
		Email:     input.Email,
		PaymentID: input.PaymentID,
		Amount:    input.Amount,
		Status:    input.Status,
		Payload:   datatypes.JSON(input.Payload),
	}

	attempts := s.retryCfg.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			order.ID = uuid.NewString()
			return s.storeOrder(ctx, order)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(s.retryCfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(repository.IsRetryableError),
		retry.OnRetry(func(n uint, err error) {
			s.metrics.RecordOrderRetry()
			s.log.Warn("retrying order transaction",
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		if model.HasCode(err, model.ErrCodeAlreadyOwned) {
			s.metrics.RecordOrder(metrics.OutcomeAlreadyOwned)
			return nil, err
		}
		s.metrics.RecordOrder(metrics.OutcomeError)
		return nil, model.NewInternalError("Error in order creation.", err)
	}

	s.metrics.RecordOrder(metrics.OutcomeCreated)
	if order.HasEntitlementPair() {
		s.metrics.RecordEntitlementGranted()
		s.publishGranted(ctx, order)
	}

	return order, nil
}

func (s *orderServiceImpl) storeOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		if !order.HasEntitlementPair() {
			return nil
		}

		err := s.purchaseRepo.Create(ctx, tx, &model.Purchase{
			ID:       uuid.NewString(),
			UserID:   order.UserID,
			CourseID: order.CourseID,
		})
		if err != nil {
			if repository.IsDuplicateError(err) {
				return model.NewAlreadyOwnedError()
			}
			return fmt.Errorf("store purchase: %w", err)
		}

		if _, err := s.checkoutRepo.Confirm(ctx, tx, order.UserID, order.CourseID, time.Now()); err != nil {
			return fmt.Errorf("confirm checkout: %w", err)
		}

		return nil
	})
}

// publishGranted is best-effort: the entitlement is already committed.
func (s *orderServiceImpl) publishGranted(ctx context.Context, order *model.Order) {
	err := s.publisher.PublishEntitlementGranted(ctx, events.EntitlementGranted{
		OrderID:  order.ID,
		UserID:   order.UserID,
		CourseID: order.CourseID,
	})
	if err != nil {
		s.log.Warn("failed to publish entitlement event",
			slog.String("order_id", order.ID),
			slog.Any("error", err),
		)
	}
}
