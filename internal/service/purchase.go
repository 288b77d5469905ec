package service

import (
	"context"
	"fmt"
	"log/slog"

	"course-marketplace/internal/metrics"
	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"

	"github.com/google/uuid"
)

type BuyResult struct {
	Course       *model.Course
	ClientSecret string
	CheckoutID   string
}

type OwnedCourses struct {
	Purchased  []*model.Purchase
	CourseData []*model.Course
}

// PurchaseService starts purchases and answers ownership queries. Buy never
// writes the ledger; entitlements come from CreateOrder.
type PurchaseService interface {
	Buy(ctx context.Context, userID, courseID string) (*BuyResult, error)
	ListOwned(ctx context.Context, userID string) (*OwnedCourses, error)
}

type purchaseServiceImpl struct {
	catalog      CatalogService
	purchaseRepo repository.PurchaseRepository
	checkoutRepo repository.CheckoutRepository
	gateway      PaymentGateway
	currency     string
	metrics      metrics.Recorder
	log          *slog.Logger
}

func NewPurchaseService(
	catalog CatalogService,
	purchaseRepo repository.PurchaseRepository,
	checkoutRepo repository.CheckoutRepository,
	gateway PaymentGateway,
	currency string,
	recorder metrics.Recorder,
	log *slog.Logger,
) PurchaseService {
	return &purchaseServiceImpl{
		catalog:      catalog,
		purchaseRepo: purchaseRepo,
		checkoutRepo: checkoutRepo,
		gateway:      gateway,
		currency:     currency,
		metrics:      recorder,
		log:          log,
	}
}

func (s *purchaseServiceImpl) Buy(ctx context.Context, userID, courseID string) (*BuyResult, error) {
	s.logState(ctx, model.CheckoutRequested, userID, courseID)

	course, err := s.catalog.Get(ctx, courseID)
	if err != nil {
		if model.HasCode(err, model.ErrCodeCourseNotFound) {
			return nil, s.reject(ctx, userID, courseID, metrics.OutcomeNotFound, err)
		}
		return nil, s.reject(ctx, userID, courseID, metrics.OutcomeError, err)
	}

	// fast path only; the unique index on checkouts settles races
	blocked, err := s.isBlocked(ctx, userID, courseID)
	if err != nil {
		return nil, s.reject(ctx, userID, courseID, metrics.OutcomeError, model.NewInternalError("Error in buying course.", err))
	}
	if blocked {
		return nil, s.reject(ctx, userID, courseID, metrics.OutcomeAlreadyOwned, model.NewAlreadyOwnedError())
	}

	s.logState(ctx, model.CheckoutValidated, userID, courseID)

	auth, err := s.gateway.Authorize(ctx, course.Price, s.currency)
	if err != nil {
		return nil, s.reject(ctx, userID, courseID, metrics.OutcomeGatewayError, err)
	}

	provider := auth.Provider
	if provider == "" {
		provider = s.gateway.Provider()
	}

	checkout := &model.Checkout{
		ID:              uuid.NewString(),
		UserID:          userID,
		CourseID:        courseID,
		Provider:        provider,
		AuthorizationID: auth.ID,
		Amount:          course.Price,
		Currency:        s.currency,
	}

	if err := s.checkoutRepo.CreateAuthorized(ctx, checkout); err != nil {
		if repository.IsDuplicateError(err) {
			s.log.WarnContext(ctx, "concurrent checkout lost the race, authorization left unused",
				slog.String("user_id", userID),
				slog.String("course_id", courseID),
				slog.String("authorization_id", auth.ID),
			)
			return nil, s.reject(ctx, userID, courseID, metrics.OutcomeAlreadyOwned, model.NewAlreadyOwnedError())
		}
		return nil, s.reject(ctx, userID, courseID, metrics.OutcomeError,
			model.NewInternalError("Error in buying course.", fmt.Errorf("store checkout: %w", err)))
	}

	s.metrics.RecordBuy(metrics.OutcomeAuthorized)
	s.log.InfoContext(ctx, "checkout authorized",
		slog.String("state", string(model.CheckoutAuthorized)),
		slog.String("checkout_id", checkout.ID),
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
		slog.String("provider", provider),
	)

	return &BuyResult{
		Course:       course,
		ClientSecret: auth.ClientSecret,
		CheckoutID:   checkout.ID,
	}, nil
}

// logState traces the in-request checkout states that are never persisted.
func (s *purchaseServiceImpl) logState(ctx context.Context, state model.CheckoutState, userID, courseID string) {
	s.log.DebugContext(ctx, "checkout state",
		slog.String("state", string(state)),
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
	)
}

// reject ends the attempt in the REJECTED state and returns err unchanged.
func (s *purchaseServiceImpl) reject(ctx context.Context, userID, courseID, outcome string, err error) error {
	s.metrics.RecordBuy(outcome)
	s.log.InfoContext(ctx, "checkout rejected",
		slog.String("state", string(model.CheckoutRejected)),
		slog.String("reason", outcome),
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
		slog.Any("error", err),
	)
	return err
}

func (s *purchaseServiceImpl) isBlocked(ctx context.Context, userID, courseID string) (bool, error) {
	owned, err := s.purchaseRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("check ledger: %w", err)
	}
	if owned {
		return true, nil
	}

	open, err := s.checkoutRepo.HasOpen(ctx, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("check open checkout: %w", err)
	}
	return open, nil
}

func (s *purchaseServiceImpl) ListOwned(ctx context.Context, userID string) (*OwnedCourses, error) {
	purchases, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, model.NewInternalError("Something went wrong.", fmt.Errorf("list purchases: %w", err))
	}

	courseIDs := make([]string, len(purchases))
	for i, p := range purchases {
		courseIDs[i] = p.CourseID
	}

	courses, err := s.catalogCourses(ctx, courseIDs)
	if err != nil {
		return nil, model.NewInternalError("Something went wrong.", err)
	}

	return &OwnedCourses{
		Purchased:  purchases,
		CourseData: courses,
	}, nil
}

// catalogCourses loads courses in one batch and returns them in the order of
// courseIDs, skipping any that no longer exist.
func (s *purchaseServiceImpl) catalogCourses(ctx context.Context, courseIDs []string) ([]*model.Course, error) {
	ordered := make([]*model.Course, 0, len(courseIDs))
	if len(courseIDs) == 0 {
		return ordered, nil
	}

	found, err := s.courseLookup(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range courseIDs {
		if course, ok := found[id]; ok {
			ordered = append(ordered, course)
		}
	}
	return ordered, nil
}

func (s *purchaseServiceImpl) courseLookup(ctx context.Context, courseIDs []string) (map[string]*model.Course, error) {
	courses, err := s.catalog.FindMany(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	return byID, nil
}
