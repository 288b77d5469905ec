package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"course-marketplace/internal/dto"
	"course-marketplace/internal/middleware"
	"course-marketplace/internal/model"
	"course-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

type CourseHandler struct {
	catalog   service.CatalogService
	purchases service.PurchaseService
}

func NewCourseHandler(catalog service.CatalogService, purchases service.PurchaseService) *CourseHandler {
	return &CourseHandler{
		catalog:   catalog,
		purchases: purchases,
	}
}

func (h *CourseHandler) CreateCourse(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := middleware.AdminID(c)
	if !ok {
		return model.NewUnauthenticatedError("No token provided.", nil)
	}

	input, closeImage, err := courseInputFromForm(c)
	if err != nil {
		return err
	}
	defer closeImage()

	course, err := h.catalog.Create(ctx, adminID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CourseResponse{
		Message: "Course created successfully.",
		Course:  course,
	})
}

func (h *CourseHandler) UpdateCourse(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := middleware.AdminID(c)
	if !ok {
		return model.NewUnauthenticatedError("No token provided.", nil)
	}

	input, closeImage, err := courseInputFromForm(c)
	if err != nil {
		return err
	}
	defer closeImage()

	if err := h.catalog.Update(ctx, adminID, c.Param("courseId"), input); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Course updated successfully."})
}

func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := middleware.AdminID(c)
	if !ok {
		return model.NewUnauthenticatedError("No token provided.", nil)
	}

	if err := h.catalog.Delete(ctx, adminID, c.Param("courseId")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Course deleted successfully."})
}

func (h *CourseHandler) GetCourses(c echo.Context) error {
	ctx := c.Request().Context()

	courses, err := h.catalog.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CoursesResponse{Courses: courses})
}

func (h *CourseHandler) CourseDetails(c echo.Context) error {
	ctx := c.Request().Context()

	course, err := h.catalog.Get(ctx, c.Param("courseId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CourseResponse{Course: course})
}

func (h *CourseHandler) BuyCourse(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return model.NewUnauthenticatedError("No token provided.", nil)
	}

	result, err := h.purchases.Buy(ctx, userID, c.Param("courseId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.BuyResponse{
		Message:      "Payment authorized. Complete the payment to access the course.",
		Course:       result.Course,
		ClientSecret: result.ClientSecret,
	})
}

// courseInputFromForm reads the multipart course fields. The returned func
// closes the uploaded image, if any.
func courseInputFromForm(c echo.Context) (service.CourseInput, func(), error) {
	noop := func() {}

	input := service.CourseInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return input, noop, model.NewValidationError("Price must be a whole number of cents.")
		}
		input.Price = price
	}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return input, noop, nil
		}
		return input, noop, model.NewValidationError("Invalid image upload.")
	}

	file, err := header.Open()
	if err != nil {
		return input, noop, model.NewInternalError("Error reading uploaded file.", fmt.Errorf("open upload: %w", err))
	}

	input.Image = &service.ImageUpload{
		File:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
	}
	return input, func() { _ = file.Close() }, nil
}
