package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.Status != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.Status)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeServerError, "server error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeServerError {
		t.Errorf("expected code %s, got %s", CodeServerError, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "not_found: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeServerError,
				Message: "server error",
				Err:     errors.New("database connection failed"),
			},
			expected: "server_error: server error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal("wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"validation", Validation("user_id required"), CodeValidation, http.StatusBadRequest},
		{"invalid state", InvalidState("cannot modify non-active booking"), CodeInvalidState, http.StatusBadRequest},
		{"auth required", AuthRequired(), CodeAuthRequired, http.StatusUnauthorized},
		{"invalid token", InvalidToken(), CodeInvalidToken, http.StatusUnauthorized},
		{"invalid credentials", InvalidCredentials(), CodeInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", Forbidden("forbidden"), CodeForbidden, http.StatusForbidden},
		{"not found", NotFound("room"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("time slot conflict"), CodeConflict, http.StatusConflict},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
		{"unavailable", Unavailable(), CodeUnavailable, http.StatusServiceUnavailable},
		{"internal", Internal("boom", nil), CodeServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	if got := NotFound("user").Message; got != "user not found" {
		t.Errorf("message = %q, want %q", got, "user not found")
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(NotFound("user")) {
		t.Error("IsAppError() should return true for AppError")
	}
	if IsAppError(errors.New("regular error")) {
		t.Error("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("passes through app errors", func(t *testing.T) {
		orig := Conflict("time slot conflict")
		if got := AsAppError(orig); got != orig {
			t.Error("expected same *AppError back")
		}
	})

	t.Run("converts unknown errors", func(t *testing.T) {
		cause := errors.New("boom")
		got := AsAppError(cause)
		if got.Code != CodeServerError {
			t.Errorf("code = %s, want %s", got.Code, CodeServerError)
		}
		if got.Message != "unexpected server error" {
			t.Errorf("message = %q, leaked internals?", got.Message)
		}
		if got.Err != cause {
			t.Error("expected the cause to be preserved for logging")
		}
	})
}

func TestBody(t *testing.T) {
	body := Conflict("time slot conflict").Body()
	if body.Code != CodeConflict || body.Status != http.StatusConflict {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Extra != nil {
		t.Error("expected nil extra by default")
	}

	withExtra := Validation("bad fields").WithExtra(map[string]any{"fields": []string{"user_id"}}).Body()
	if withExtra.Extra == nil {
		t.Error("expected extra to carry through")
	}
}
