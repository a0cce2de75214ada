package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. Ownership mismatches carry their own codes so callers can
// distinguish "malformed request" from "not yours to touch".
const (
	ErrCodeBadRequest            = "BAD_REQUEST"
	ErrCodeValidationError       = "VALIDATION_ERROR"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeConsentNotFound       = "CONSENT_NOT_FOUND"
	ErrCodeAuthResourceNotFound  = "AUTH_RESOURCE_NOT_FOUND"
	ErrCodeFileNotFound          = "FILE_NOT_FOUND"
	ErrCodeConsentAlreadyRevoked = "CONSENT_ALREADY_REVOKED"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
	ErrCodeUserIDMismatch        = "USER_ID_MISMATCH"
	ErrCodeClientIDMismatch      = "CLIENT_ID_MISMATCH"
	ErrCodeOrgMismatch           = "ORG_MISMATCH"
	ErrCodeIdempotencyViolation  = "IDEMPOTENCY_VIOLATION"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeExtensionError        = "EXTENSION_ERROR"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// ServiceError is the error type returned by the consent core service. Code
// carries the error taxonomy; Details optional operator context.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewServiceError creates a new service error
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// NewValidationError creates a validation error for a missing/invalid field
func NewValidationError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidationError, Message: message}
}

// NewPersistenceError wraps a database failure with operation context
func NewPersistenceError(operation string, err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeDatabaseError,
		Message: fmt.Sprintf("persistence failure during %s", operation),
		Details: err.Error(),
	}
}

// NewExtensionError wraps an external validation failure
func NewExtensionError(errorCode, errorMessage string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeExtensionError,
		Message: errorMessage,
		Details: errorCode,
	}
}

// AsServiceError extracts a *ServiceError from an error chain, or wraps the
// error as an internal error when none is present
func AsServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return &ServiceError{Code: ErrCodeInternalError, Message: err.Error()}
}

// HTTPStatusForErrorCode returns the appropriate HTTP status code for an error code
func HTTPStatusForErrorCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationError, ErrCodeClientIDMismatch, ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case ErrCodeForbidden, ErrCodeUserIDMismatch, ErrCodeOrgMismatch:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeConsentNotFound, ErrCodeAuthResourceNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeConsentAlreadyRevoked, ErrCodeIdempotencyViolation:
		return http.StatusConflict
	case ErrCodeDatabaseError, ErrCodeExtensionError, ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse represents a standard error response body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// SuccessResponse represents a standard success response body
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse creates a new success response
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Message: message,
		Data:    data,
	}
}
