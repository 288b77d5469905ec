package repository

import (
	"context"

	"course-marketplace/internal/model"

	"gorm.io/gorm"
)

// AccountRepository reads and writes the accounts of one role.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, accountID string) (*model.Account, error)
}

type accountRepoImpl struct {
	db    *gorm.DB
	table string
}

func NewAccountRepository(db *gorm.DB, role model.Role) AccountRepository {
	return &accountRepoImpl{
		db:    db,
		table: model.TableFor(role),
	}
}

func (r *accountRepoImpl) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Table(r.table).Create(account).Error
}

func (r *accountRepoImpl) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Table(r.table).
		Where("email = ?", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepoImpl) FindByID(ctx context.Context, accountID string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Table(r.table).
		Where("id = ?", accountID).
		First(&account).Error
	if err != nil {
		return nil, err
	}

	return &account, nil
}
