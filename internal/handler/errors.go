package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"course-marketplace/internal/dto"
	"course-marketplace/internal/model"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler writes every error as {"errors": ...} with a status
// derived from its kind.
func NewHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Int("status", status),
				slog.Any("error", err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("write error response", slog.Any("error", err))
		}
	}
}

// An echo.HTTPError wins over any AppError attached as its internal cause.
func resolveError(err error) (int, dto.ErrorResponse) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		if _, ok := msg.(string); !ok {
			msg = fmt.Sprint(msg)
		}
		return httpErr.Code, dto.ErrorResponse{Errors: msg}
	}

	if appErr, ok := model.AsAppError(err); ok {
		status := statusForAppError(appErr)
		if len(appErr.Details) > 0 {
			return status, dto.ErrorResponse{Errors: appErr.Details}
		}
		return status, dto.ErrorResponse{Errors: appErr.Message}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{Errors: "Internal server error."}
}

func statusForAppError(err *model.AppError) int {
	switch err.Kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		if err.Code == model.ErrCodeEmailTaken {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
