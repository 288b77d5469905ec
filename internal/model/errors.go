package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindAuth       ErrorKind = "auth"
	KindGateway    ErrorKind = "gateway"
	KindInternal   ErrorKind = "internal"
)

const (
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeCourseNotFound  = "COURSE_NOT_FOUND"
	ErrCodeAlreadyOwned    = "ALREADY_OWNED"
	ErrCodeEmailTaken      = "EMAIL_TAKEN"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeInvalidLogin    = "INVALID_CREDENTIALS"
	ErrCodeGateway         = "GATEWAY_ERROR"
	ErrCodeMediaUpload     = "MEDIA_UPLOAD_FAILED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// AppError is an error with a kind the transport layer maps to a status code.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError extracts the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func NewValidationError(message string, details ...string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

func NewCourseNotFoundError(courseID string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    ErrCodeCourseNotFound,
		Message: "Course not found.",
		Err:     fmt.Errorf("course %q does not exist", courseID),
	}
}

func NewAlreadyOwnedError() *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    ErrCodeAlreadyOwned,
		Message: "User has already purchased this course.",
	}
}

func NewEmailTakenError() *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    ErrCodeEmailTaken,
		Message: "Email already exists.",
	}
}

func NewUnauthenticatedError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindAuth,
		Code:    ErrCodeUnauthenticated,
		Message: message,
		Err:     cause,
	}
}

func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Kind:    KindAuth,
		Code:    ErrCodeInvalidLogin,
		Message: "Invalid credentials.",
	}
}

func NewGatewayError(cause error) *AppError {
	return &AppError{
		Kind:    KindGateway,
		Code:    ErrCodeGateway,
		Message: "Payment processor is unavailable.",
		Err:     cause,
	}
}

func NewMediaUploadError(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    ErrCodeMediaUpload,
		Message: "Error uploading file to media host.",
		Err:     cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Err:     cause,
	}
}
