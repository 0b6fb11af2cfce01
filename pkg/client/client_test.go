package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/timeutil"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:         baseURL,
		Timeout:         time.Second,
		BreakerFailures: 3,
		BreakerReset:    time.Minute,
	}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Fatalf("code = %s, want %s", appErr.Code, code)
	}
}

func TestUserClient_EnsureExists(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"known user", http.StatusOK, ""},
		{"unknown user", http.StatusNotFound, apperrors.CodeNotFound},
		{"upstream error", http.StatusInternalServerError, apperrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/users/id/7/status" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewUserClient(testOptions(srv.URL), testLogger())
			err := c.EnsureExists(context.Background(), 7)

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			wantCode(t, err, tt.wantCode)
		})
	}
}

func TestUserClient_Basic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"username":"owner"}`))
	}))
	defer srv.Close()

	c := NewUserClient(testOptions(srv.URL), testLogger())
	basic, err := c.Basic(context.Background(), 7)
	if err != nil {
		t.Fatalf("Basic: %v", err)
	}
	if basic.Username != "owner" {
		t.Errorf("username = %q, want owner", basic.Username)
	}
}

func TestBookingClient_CheckAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("room_id") != "3" {
			t.Errorf("room_id = %q", q.Get("room_id"))
		}
		if q.Get("start") != "2026-03-10T09:00:00" || q.Get("end") != "2026-03-10T10:00:00" {
			t.Errorf("window params = %q .. %q", q.Get("start"), q.Get("end"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"room_id":3,"available":false}`))
	}))
	defer srv.Close()

	c := NewBookingClient(testOptions(srv.URL), testLogger())
	window := timeutil.Window{
		Start: timeutil.Date(2026, time.March, 10, 9, 0, 0),
		End:   timeutil.Date(2026, time.March, 10, 10, 0, 0),
	}

	available, err := c.CheckAvailability(context.Background(), 3, window)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if available {
		t.Error("expected unavailable")
	}
}

func TestBookingClient_ActiveStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"room_id":3,"status":"booked"}`))
	}))
	defer srv.Close()

	c := NewBookingClient(testOptions(srv.URL), testLogger())
	status, err := c.ActiveStatus(context.Background(), 3)
	if err != nil {
		t.Fatalf("ActiveStatus: %v", err)
	}
	if status != "booked" {
		t.Errorf("status = %q, want booked", status)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewRoomClient(testOptions(srv.URL), testLogger())
	err := c.EnsureExists(context.Background(), 3)
	wantCode(t, err, apperrors.CodeUnavailable)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewRoomClient(testOptions(srv.URL), testLogger())

	// Every call fails the same way whether the transport errored or the
	// breaker already tripped; callers never see the difference.
	for i := 0; i < 5; i++ {
		err := c.EnsureExists(context.Background(), 3)
		wantCode(t, err, apperrors.CodeUnavailable)
	}
}
