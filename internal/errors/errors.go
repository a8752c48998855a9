// Package errors provides custom error types for the bizdir API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError carrying the same code, so that
// errors.Is matches copies produced by Wrap and WithMessage against their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "Request could not be processed", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Resource state conflict", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Business errors.
var (
	ErrBusinessNotFound         = &AppError{Code: "BUSINESS_NOT_FOUND", Message: "Business not found", StatusCode: http.StatusNotFound}
	ErrBusinessAlreadyApproved  = &AppError{Code: "BUSINESS_ALREADY_APPROVED", Message: "Business is already approved", StatusCode: http.StatusConflict}
	ErrBusinessAlreadyRejected  = &AppError{Code: "BUSINESS_ALREADY_REJECTED", Message: "Business is already rejected", StatusCode: http.StatusConflict}
	ErrBusinessAlreadySuspended = &AppError{Code: "BUSINESS_ALREADY_SUSPENDED", Message: "Business is already suspended", StatusCode: http.StatusConflict}
	ErrBusinessStatusChanged    = &AppError{Code: "BUSINESS_STATUS_CHANGED", Message: "Business status already changed", StatusCode: http.StatusConflict}
	ErrBusinessNotEditable      = &AppError{Code: "BUSINESS_NOT_EDITABLE", Message: "Business can no longer be edited", StatusCode: http.StatusConflict}
)

// Review errors.
var (
	ErrReviewNotFound = &AppError{Code: "REVIEW_NOT_FOUND", Message: "Review not found", StatusCode: http.StatusNotFound}
)

// Promotion errors.
var (
	ErrPromotionNotFound = &AppError{Code: "PROMOTION_NOT_FOUND", Message: "Promotion not found", StatusCode: http.StatusNotFound}
)
