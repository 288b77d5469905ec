package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"course-marketplace/internal/model"
	"course-marketplace/internal/service"
	"course-marketplace/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngUpload(name string) *service.ImageUpload {
	return &service.ImageUpload{
		File:        strings.NewReader("\x89PNG fake image"),
		Filename:    name,
		ContentType: "image/png",
	}
}

func TestCatalog_CreateSanitizesAndUploads(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)

	course, err := m.catalog.Create(ctx, "a1", service.CourseInput{
		Title:       "<b>Go</b> basics",
		Description: "Learn Go<script>alert(1)</script>",
		Price:       1500,
		Image:       pngUpload("cover.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go basics", course.Title)
	assert.Equal(t, "Learn Go", course.Description)
	assert.Equal(t, "a1", course.CreatorID)
	assert.NotEmpty(t, course.Image.URL)

	stored, err := m.catalog.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Image.PublicID, stored.Image.PublicID)

	price, err := m.catalog.Price(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), price)
}

func TestCatalog_CreateValidation(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)

	tests := []struct {
		name  string
		input service.CourseInput
		msg   string
	}{
		{"missing title", service.CourseInput{Description: "d", Price: 10, Image: pngUpload("a.png")}, "All fields are required."},
		{"zero price", service.CourseInput{Title: "t", Description: "d", Image: pngUpload("a.png")}, "All fields are required."},
		{"no image", service.CourseInput{Title: "t", Description: "d", Price: 10}, "No files uploaded"},
		{"gif image", service.CourseInput{Title: "t", Description: "d", Price: 10, Image: &service.ImageUpload{
			File: strings.NewReader("GIF89a"), Filename: "a.gif", ContentType: "image/gif",
		}}, "Invalid file format. Only JPG and PNG are allowed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.catalog.Create(ctx, "a1", tt.input)
			appErr, ok := model.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, model.KindValidation, appErr.Kind)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}

	assert.Zero(t, m.media.uploads)
}

func TestCatalog_CreateUploadFailure(t *testing.T) {
	m := newMarketplace(t)
	m.media.uploadErr = errors.New("cloud down")

	_, err := m.catalog.Create(context.Background(), "a1", service.CourseInput{
		Title: "t", Description: "d", Price: 10, Image: pngUpload("a.png"),
	})
	assert.True(t, model.HasCode(err, model.ErrCodeMediaUpload))

	courses, err := m.catalog.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCatalog_UpdateReplacesImageForOwnerOnly(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	testutil.SeedCourse(t, m.db, "c1", "a1", 500)

	err := m.catalog.Update(ctx, "a2", "c1", service.CourseInput{Title: "x", Description: "y", Price: 1})
	assert.True(t, model.HasCode(err, model.ErrCodeCourseNotFound))

	err = m.catalog.Update(ctx, "a1", "missing", service.CourseInput{Title: "x", Description: "y", Price: 1})
	assert.True(t, model.HasCode(err, model.ErrCodeCourseNotFound))

	err = m.catalog.Update(ctx, "a1", "c1", service.CourseInput{
		Title: "New title", Description: "New description", Price: 800, Image: pngUpload("new.png"),
	})
	require.NoError(t, err)

	course, err := m.catalog.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "New title", course.Title)
	assert.Equal(t, int64(800), course.Price)
	assert.NotEqual(t, "courses/c1", course.Image.PublicID)
	assert.Equal(t, []string{"courses/c1"}, m.media.destroyed)
}

func TestCatalog_DeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t)
	testutil.SeedCourse(t, m.db, "c1", "a1", 500)

	err := m.catalog.Delete(ctx, "a2", "c1")
	assert.True(t, model.HasCode(err, model.ErrCodeCourseNotFound))

	require.NoError(t, m.catalog.Delete(ctx, "a1", "c1"))

	_, err = m.catalog.Get(ctx, "c1")
	assert.True(t, model.HasCode(err, model.ErrCodeCourseNotFound))
	assert.Equal(t, []string{"courses/c1"}, m.media.destroyed)

	exists, err := m.catalog.Exists(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, exists)
}
