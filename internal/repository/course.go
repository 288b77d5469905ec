package repository

import (
	"context"

	"course-marketplace/internal/model"

	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, courseID string) (*model.Course, error)
	FindMany(ctx context.Context, courseIDs []string) ([]*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
	Exists(ctx context.Context, courseID string) (bool, error)
	UpdateOwned(ctx context.Context, courseID, creatorID string, updates map[string]interface{}) (bool, error)
	DeleteOwned(ctx context.Context, courseID, creatorID string) (*model.Course, error)
}

type courseRepoImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepoImpl{
		db: db,
	}
}

func (r *courseRepoImpl) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepoImpl) FindByID(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("id = ?", courseID).
		First(&course).Error

	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepoImpl) FindMany(ctx context.Context, courseIDs []string) ([]*model.Course, error) {
	courses := []*model.Course{}
	if len(courseIDs) == 0 {
		return courses, nil
	}

	err := r.db.WithContext(ctx).
		Where("id IN ?", courseIDs).
		Find(&courses).
		Error

	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepoImpl) List(ctx context.Context) ([]*model.Course, error) {
	courses := []*model.Course{}
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&courses).
		Error

	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepoImpl) Exists(ctx context.Context, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", courseID).
		Count(&count).Error

	return count > 0, err
}

// UpdateOwned applies updates only when the course belongs to creatorID.
// It reports false when no such course exists.
func (r *courseRepoImpl) UpdateOwned(ctx context.Context, courseID, creatorID string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ? AND creator_id = ?", courseID, creatorID).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// DeleteOwned removes the course if it belongs to creatorID and returns the deleted row.
func (r *courseRepoImpl) DeleteOwned(ctx context.Context, courseID, creatorID string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND creator_id = ?", courseID, creatorID).First(&course).Error; err != nil {
			return err
		}

		return tx.Delete(&course).Error
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}
