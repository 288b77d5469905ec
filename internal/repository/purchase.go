package repository

import (
	"context"

	"course-marketplace/internal/model"

	"gorm.io/gorm"
)

// PurchaseRepository is the entitlement ledger. Rows are only ever inserted.
type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error)
	CountByPair(ctx context.Context, userID, courseID string) (int64, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

// Create inserts one entitlement through tx. A second row for the same
// (user, course) fails with gorm.ErrDuplicatedKey.
func (r *purchaseRepoImpl) Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error {
	return tx.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepoImpl) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	count, err := r.CountByPair(ctx, userID, courseID)
	return count > 0, err
}

func (r *purchaseRepoImpl) CountByPair(ctx context.Context, userID, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error

	return count, err
}

func (r *purchaseRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error) {
	purchases := []*model.Purchase{}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}
