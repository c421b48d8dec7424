package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeUnauthenticated     ErrorCode = "UNAUTHENTICATED"
	CodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeIdempotencyConflict ErrorCode = "IDEMPOTENCY_CONFLICT"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// HTTPStatusMap maps error codes to HTTP status codes
var HTTPStatusMap = map[ErrorCode]int{
	CodeValidation:          http.StatusBadRequest,
	CodeUnauthenticated:     http.StatusUnauthorized,
	CodeTokenExpired:        http.StatusUnauthorized,
	CodeInvalidCredentials:  http.StatusUnauthorized,
	CodeConflict:            http.StatusConflict,
	CodeNotFound:            http.StatusNotFound,
	CodeIdempotencyConflict: http.StatusConflict,
	CodeUpstreamUnavailable: http.StatusServiceUnavailable,
	CodeInternalError:       http.StatusInternalServerError,
}

// ErrorResponse represents the standardized error response structure
type ErrorResponse struct {
	Error struct {
		Code      ErrorCode `json:"code"`
		Message   string    `json:"message"`
		RequestID string    `json:"request_id,omitempty"`
	} `json:"error"`
}

// AppError represents an application error with code and message
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError without a cause
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewAppError creates a new AppError
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorf creates a new AppError with formatted message
func NewAppErrorf(code ErrorCode, cause error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Internal wraps a storage or programming failure. The message is generic so
// nothing from the cause reaches the client.
func Internal(cause error) *AppError {
	return NewAppError(CodeInternalError, "Internal server error", cause)
}

// ToErrorResponse converts AppError to ErrorResponse
func (e *AppError) ToErrorResponse(requestID string) ErrorResponse {
	resp := ErrorResponse{}
	resp.Error.Code = e.Code
	resp.Error.Message = e.Message
	resp.Error.RequestID = requestID
	return resp
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	if status, exists := HTTPStatusMap[e.Code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether the same request may succeed later
func (e *AppError) IsRetryable() bool {
	return e.Code == CodeUpstreamUnavailable
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternalError for anything unclassified.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
