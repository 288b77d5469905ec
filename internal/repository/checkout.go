package repository

import (
	"context"
	"time"

	"course-marketplace/internal/model"

	"gorm.io/gorm"
)

type CheckoutRepository interface {
	CreateAuthorized(ctx context.Context, checkout *model.Checkout) error
	HasOpen(ctx context.Context, userID, courseID string) (bool, error)
	Confirm(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (int64, error)
	ExpireStale(ctx context.Context, before time.Time) (int64, error)
	GetByID(ctx context.Context, checkoutID string) (*model.Checkout, error)
	CountOpen(ctx context.Context, userID, courseID string) (int64, error)
}

type checkoutRepoImpl struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepoImpl{
		db: db,
	}
}

// CreateAuthorized stores an AUTHORIZED checkout. A concurrent open checkout for
// the same pair fails with gorm.ErrDuplicatedKey on active_key.
func (r *checkoutRepoImpl) CreateAuthorized(ctx context.Context, checkout *model.Checkout) error {
	key := model.CheckoutKey(checkout.UserID, checkout.CourseID)
	checkout.State = model.CheckoutAuthorized
	checkout.ActiveKey = &key

	return r.db.WithContext(ctx).Create(checkout).Error
}

func (r *checkoutRepoImpl) HasOpen(ctx context.Context, userID, courseID string) (bool, error) {
	count, err := r.CountOpen(ctx, userID, courseID)
	return count > 0, err
}

func (r *checkoutRepoImpl) CountOpen(ctx context.Context, userID, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("active_key = ?", model.CheckoutKey(userID, courseID)).
		Count(&count).Error

	return count, err
}

// Confirm moves the open checkout of the pair, if any, to CONFIRMED.
func (r *checkoutRepoImpl) Confirm(ctx context.Context, tx *gorm.DB, userID, courseID string, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Checkout{}).
		Where("active_key = ? AND state = ?", model.CheckoutKey(userID, courseID), model.CheckoutAuthorized).
		Updates(map[string]interface{}{
			"state":        model.CheckoutConfirmed,
			"active_key":   gorm.Expr("NULL"),
			"confirmed_at": at,
			"updated_at":   at,
		})

	return result.RowsAffected, result.Error
}

// ExpireStale moves AUTHORIZED checkouts created before the cutoff to EXPIRED and
// frees their active keys.
func (r *checkoutRepoImpl) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("state = ? AND created_at < ?", model.CheckoutAuthorized, before).
		Updates(map[string]interface{}{
			"state":      model.CheckoutExpired,
			"active_key": gorm.Expr("NULL"),
			"expired_at": now,
			"updated_at": now,
		})

	return result.RowsAffected, result.Error
}

func (r *checkoutRepoImpl) GetByID(ctx context.Context, checkoutID string) (*model.Checkout, error) {
	var checkout model.Checkout
	err := r.db.WithContext(ctx).
		Where("id = ?", checkoutID).
		First(&checkout).Error

	if err != nil {
		return nil, err
	}

	return &checkout, nil
}
