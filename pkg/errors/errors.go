package errors

import (
	"fmt"
	"net/http"
)

// Stable error codes carried on the wire. Clients match on these, so the
// strings never change even when messages do.
const (
	CodeValidation         = "validation_error"
	CodeInvalidState       = "invalid_state"
	CodeAuthRequired       = "auth_required"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeRateLimited        = "rate_limited"
	CodeServerError        = "server_error"
	CodeUnavailable        = "service_unavailable"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Extra   map[string]any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithExtra(extra map[string]any) *AppError {
	e.Extra = extra
	return e
}

// Body is the JSON payload nested under the "error" key of every error
// response.
type Body struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Extra   map[string]any `json:"extra,omitempty"`
}

func (e *AppError) Body() Body {
	return Body{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Extra:   e.Extra,
	}
}

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func InvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusBadRequest)
}

func AuthRequired() *AppError {
	return New(CodeAuthRequired, "auth required", http.StatusUnauthorized)
}

func InvalidToken() *AppError {
	return New(CodeInvalidToken, "invalid token", http.StatusUnauthorized)
}

func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func RateLimited() *AppError {
	return New(CodeRateLimited, "too many requests", http.StatusTooManyRequests)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeServerError, message, http.StatusInternalServerError)
}

// Unavailable covers every way a dependency can fail to answer: transport
// errors, open circuit breakers, and unexpected upstream statuses.
func Unavailable() *AppError {
	return New(CodeUnavailable, "dependency unavailable", http.StatusServiceUnavailable)
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError returns err as an *AppError, converting unknown errors into a
// generic server_error that hides the cause from clients.
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("unexpected server error", err)
}
