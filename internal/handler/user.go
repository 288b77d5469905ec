package handler

import (
	"net/http"

	"course-marketplace/internal/dto"
	"course-marketplace/internal/middleware"
	"course-marketplace/internal/model"
	"course-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	purchases service.PurchaseService
}

func NewUserHandler(purchases service.PurchaseService) *UserHandler {
	return &UserHandler{
		purchases: purchases,
	}
}

func (h *UserHandler) Purchases(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return model.NewUnauthenticatedError("No token provided.", nil)
	}

	owned, err := h.purchases.ListOwned(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.PurchasesResponse{
		Purchased:  owned.Purchased,
		CourseData: owned.CourseData,
	})
}
