package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"course-marketplace/internal/dto"
	"course-marketplace/internal/middleware"
	"course-marketplace/internal/model"
	"course-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

const maxOrderBody = 64 << 10

type OrderHandler struct {
	orders      service.OrderService
	requireAuth bool
	log         *slog.Logger
}

func NewOrderHandler(orders service.OrderService, requireAuth bool, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:      orders,
		requireAuth: requireAuth,
		log:         log,
	}
}

// CreateOrder records the order. Every failure answers 401 with the same body.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.createOrder(c)
	if err != nil {
		h.log.WarnContext(ctx, "order creation failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Error in order creation.").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, dto.OrderResponse{
		Message:   "Order created successfully.",
		OrderInfo: order,
	})
}

func (h *OrderHandler) createOrder(c echo.Context) (*model.Order, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxOrderBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxOrderBody {
		return nil, errors.New("order body too large")
	}

	var req dto.OrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}

	// a caller with a token may only record orders for itself
	callerID, authenticated := middleware.UserID(c)
	if h.requireAuth && !authenticated {
		return nil, errors.New("order requires an authenticated user")
	}
	if authenticated && req.UserID != callerID {
		return nil, fmt.Errorf("order user %q does not match caller %q", req.UserID, callerID)
	}

	return h.orders.CreateOrder(c.Request().Context(), service.OrderInput{
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		Email:     req.Email,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Status:    req.Status,
		Payload:   body,
	})
}
