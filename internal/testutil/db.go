package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"course-marketplace/internal/client"
	"course-marketplace/internal/config"
	"course-marketplace/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database that lives for the duration of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// SeedCourse inserts a course owned by creatorID.
func SeedCourse(t *testing.T, db *gorm.DB, id, creatorID string, price int64) *model.Course {
	t.Helper()

	course := &model.Course{
		ID:          id,
		Title:       "Course " + id,
		Description: "Description of " + id,
		Price:       price,
		Image:       model.MediaRef{PublicID: "courses/" + id, URL: "https://media.example.com/" + id + ".png"},
		CreatorID:   creatorID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

// SeedPurchase inserts a ledger row with an explicit creation time.
func SeedPurchase(t *testing.T, db *gorm.DB, id, userID, courseID string, createdAt time.Time) *model.Purchase {
	t.Helper()

	purchase := &model.Purchase{
		ID:        id,
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(purchase).Error)
	return purchase
}
