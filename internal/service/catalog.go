package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"course-marketplace/internal/client"
	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

type ImageUpload struct {
	File        io.Reader
	Filename    string
	ContentType string
}

type CourseInput struct {
	Title       string
	Description string
	Price       int64
	Image       *ImageUpload
}

type CatalogService interface {
	Get(ctx context.Context, courseID string) (*model.Course, error)
	Exists(ctx context.Context, courseID string) (bool, error)
	Price(ctx context.Context, courseID string) (int64, error)
	List(ctx context.Context) ([]*model.Course, error)
	FindMany(ctx context.Context, courseIDs []string) ([]*model.Course, error)
	Create(ctx context.Context, adminID string, input CourseInput) (*model.Course, error)
	Update(ctx context.Context, adminID, courseID string, input CourseInput) error
	Delete(ctx context.Context, adminID, courseID string) error
}

type catalogServiceImpl struct {
	courseRepo repository.CourseRepository
	media      client.MediaClient
	policy     *bluemonday.Policy
	log        *slog.Logger
}

// NewCatalogService builds the catalog. media may be nil, in which case any
// write carrying an image fails.
func NewCatalogService(
	courseRepo repository.CourseRepository,
	media client.MediaClient,
	log *slog.Logger,
) CatalogService {
	return &catalogServiceImpl{
		courseRepo: courseRepo,
		media:      media,
		policy:     bluemonday.StrictPolicy(),
		log:        log,
	}
}

func (s *catalogServiceImpl) Get(ctx context.Context, courseID string) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, model.NewCourseNotFoundError(courseID)
		}
		return nil, model.NewInternalError("Error in getting course details.", fmt.Errorf("find course: %w", err))
	}
	return course, nil
}

func (s *catalogServiceImpl) Exists(ctx context.Context, courseID string) (bool, error) {
	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("check course exists: %w", err)
	}
	return exists, nil
}

func (s *catalogServiceImpl) Price(ctx context.Context, courseID string) (int64, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return course.Price, nil
}

func (s *catalogServiceImpl) List(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, model.NewInternalError("Error in getting courses.", fmt.Errorf("list courses: %w", err))
	}
	return courses, nil
}

func (s *catalogServiceImpl) FindMany(ctx context.Context, courseIDs []string) ([]*model.Course, error) {
	courses, err := s.courseRepo.FindMany(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	return courses, nil
}

func (s *catalogServiceImpl) Create(ctx context.Context, adminID string, input CourseInput) (*model.Course, error) {
	title, description, err := s.cleanFields(input)
	if err != nil {
		return nil, err
	}

	if input.Image == nil {
		return nil, model.NewValidationError("No files uploaded")
	}

	image, err := s.upload(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Price:       input.Price,
		Image:       *image,
		CreatorID:   adminID,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		s.destroy(ctx, image.PublicID)
		return nil, model.NewInternalError("Error creating course.", fmt.Errorf("store course: %w", err))
	}

	return course, nil
}

func (s *catalogServiceImpl) Update(ctx context.Context, adminID, courseID string, input CourseInput) error {
	title, description, err := s.cleanFields(input)
	if err != nil {
		return err
	}

	current, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.NewCourseNotFoundError(courseID)
		}
		return model.NewInternalError("Error updating course.", fmt.Errorf("find course: %w", err))
	}
	if current.CreatorID != adminID {
		return model.NewCourseNotFoundError(courseID)
	}

	updates := map[string]interface{}{
		"title":       title,
		"description": description,
		"price":       input.Price,
	}

	var image *model.MediaRef
	if input.Image != nil {
		image, err = s.upload(ctx, input.Image)
		if err != nil {
			return err
		}
		updates["image_public_id"] = image.PublicID
		updates["image_url"] = image.URL
	}

	updated, err := s.courseRepo.UpdateOwned(ctx, courseID, adminID, updates)
	if err != nil || !updated {
		if image != nil {
			s.destroy(ctx, image.PublicID)
		}
		if err != nil {
			return model.NewInternalError("Error updating course.", fmt.Errorf("update course: %w", err))
		}
		return model.NewCourseNotFoundError(courseID)
	}

	if image != nil && current.Image.PublicID != "" {
		s.destroy(ctx, current.Image.PublicID)
	}

	return nil
}

func (s *catalogServiceImpl) Delete(ctx context.Context, adminID, courseID string) error {
	course, err := s.courseRepo.DeleteOwned(ctx, courseID, adminID)
	if err != nil {
		if repository.IsNotFound(err) {
			return model.NewCourseNotFoundError(courseID)
		}
		return model.NewInternalError("Error in course deleting.", fmt.Errorf("delete course: %w", err))
	}

	if course.Image.PublicID != "" {
		s.destroy(ctx, course.Image.PublicID)
	}
	return nil
}

func (s *catalogServiceImpl) cleanFields(input CourseInput) (string, string, error) {
	title := strings.TrimSpace(s.policy.Sanitize(input.Title))
	description := strings.TrimSpace(s.policy.Sanitize(input.Description))

	if title == "" || description == "" || input.Price <= 0 {
		return "", "", model.NewValidationError("All fields are required.")
	}
	return title, description, nil
}

func (s *catalogServiceImpl) upload(ctx context.Context, image *ImageUpload) (*model.MediaRef, error) {
	if !allowedImageTypes[image.ContentType] {
		return nil, model.NewValidationError("Invalid file format. Only JPG and PNG are allowed.")
	}

	if s.media == nil {
		return nil, model.NewMediaUploadError(errors.New("media host is not configured"))
	}

	ref, err := s.media.Upload(ctx, image.File, image.Filename)
	if err != nil {
		return nil, model.NewMediaUploadError(err)
	}
	return ref, nil
}

// destroy removes a media asset. Failures only leave an orphaned asset behind.
func (s *catalogServiceImpl) destroy(ctx context.Context, publicID string) {
	if s.media == nil {
		return
	}
	if err := s.media.Destroy(ctx, publicID); err != nil {
		s.log.Warn("failed to destroy media asset",
			slog.String("public_id", publicID),
			slog.Any("error", err),
		)
	}
}
