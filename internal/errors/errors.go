package errors

import (
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors (401xx)
	ErrInvalidCredentials ErrorCode = "40101"
	ErrTokenExpired       ErrorCode = "40102"

	// Authorization errors (403xx)
	ErrForbidden ErrorCode = "40301"

	// Resource errors (404xx)
	ErrProductNotFound ErrorCode = "40401"
	ErrUserNotFound    ErrorCode = "40402"
	ErrPayoutNotFound  ErrorCode = "40403"
	ErrSettingNotFound ErrorCode = "40404"

	// Request errors (400xx)
	ErrInvalidRequest    ErrorCode = "40001"
	ErrValidationFailed  ErrorCode = "40002"
	ErrNothingToWithdraw ErrorCode = "40003"
	ErrIllegalTransition ErrorCode = "40004"

	// Server errors (500xx)
	ErrInternalServer ErrorCode = "50001"
)

// APIError represents a standardized API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse represents the error response format
type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id"`
}

// NewErrorResponse builds the standard error envelope
func NewErrorResponse(err *APIError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     *err,
		RequestID: requestID,
	}
}

// Common errors
var (
	ErrInvalidCredentialsError = &APIError{
		Code:       ErrInvalidCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpiredError = &APIError{
		Code:       ErrTokenExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbiddenError = &APIError{
		Code:       ErrForbidden,
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
	}

	ErrProductNotFoundError = &APIError{
		Code:       ErrProductNotFound,
		Message:    "Product not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUserNotFoundError = &APIError{
		Code:       ErrUserNotFound,
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrPayoutNotFoundError = &APIError{
		Code:       ErrPayoutNotFound,
		Message:    "Payout request not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrSettingNotFoundError = &APIError{
		Code:       ErrSettingNotFound,
		Message:    "Commission setting not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrNothingToWithdrawError = &APIError{
		Code:       ErrNothingToWithdraw,
		Message:    "No available earnings to withdraw",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrIllegalTransitionError = &APIError{
		Code:       ErrIllegalTransition,
		Message:    "Illegal payout status transition",
		HTTPStatus: http.StatusConflict,
	}

	ErrInternalServerError = &APIError{
		Code:       ErrInternalServer,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// NewValidationError creates a validation error with details
func NewValidationError(details any) *APIError {
	return &APIError{
		Code:       ErrValidationFailed,
		Message:    "Validation failed",
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:       ErrInvalidRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}
