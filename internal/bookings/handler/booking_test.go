package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
	"roomly/pkg/timeutil"
)

type mockBookingService struct {
	createFunc            func(ctx context.Context, p auth.Principal, req *model.BookingCreate) (*model.Booking, error)
	listFunc              func(ctx context.Context, p auth.Principal) ([]*model.BookingWithNames, error)
	updateFunc            func(ctx context.Context, p auth.Principal, id int64, upd *model.BookingUpdate) (*model.Booking, error)
	cancelFunc            func(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error)
	forceCancelFunc       func(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error)
	checkAvailabilityFunc func(ctx context.Context, roomID int64, window timeutil.Window) (bool, error)
	activeStatusFunc      func(ctx context.Context, roomID int64) (string, error)
}

func (m *mockBookingService) Create(ctx context.Context, p auth.Principal, req *model.BookingCreate) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, p, req)
	}
	return &model.Booking{ID: 1, UserID: p.ID, Status: model.BookingActive}, nil
}

func (m *mockBookingService) List(ctx context.Context, p auth.Principal) ([]*model.BookingWithNames, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, p)
	}
	return []*model.BookingWithNames{}, nil
}

func (m *mockBookingService) Update(ctx context.Context, p auth.Principal, id int64, upd *model.BookingUpdate) (*model.Booking, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, p, id, upd)
	}
	return &model.Booking{ID: id, UserID: p.ID, Status: model.BookingActive}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, p, id)
	}
	return &model.Booking{ID: id, UserID: p.ID, Status: model.BookingCanceled}, nil
}

func (m *mockBookingService) ForceCancel(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error) {
	if m.forceCancelFunc != nil {
		return m.forceCancelFunc(ctx, p, id)
	}
	return &model.Booking{ID: id, Status: model.BookingCanceled}, nil
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, roomID int64, window timeutil.Window) (bool, error) {
	if m.checkAvailabilityFunc != nil {
		return m.checkAvailabilityFunc(ctx, roomID, window)
	}
	return true, nil
}

func (m *mockBookingService) ActiveStatus(ctx context.Context, roomID int64) (string, error) {
	if m.activeStatusFunc != nil {
		return m.activeStatusFunc(ctx, roomID)
	}
	return "available", nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func newTestRouter(t *testing.T, svc *mockBookingService) (*httprouter.Router, *auth.TokenManager) {
	t.Helper()

	log := testLogger()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	limiter := middleware.NewRateLimiter(false, log)
	t.Cleanup(limiter.Stop)
	idem := middleware.NewIdempotencyCache(time.Hour, log)
	t.Cleanup(idem.Stop)

	h := NewBookingHandler(svc, auth.NewGuard(tokens), limiter, idem, log)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenManager, user *model.User) string {
	t.Helper()
	token, err := tokens.Issue(user)
	require.NoError(t, err)
	return "Bearer " + token
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error apperrors.Body `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Error.Code
}

func TestCreateRoute(t *testing.T) {
	svc := &mockBookingService{}
	router, tokens := newTestRouter(t, svc)
	user := &model.User{ID: 7, Username: "owner", Role: model.RoleUser}

	t.Run("created", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
			strings.NewReader(`{"user_id":7,"room_id":3,"start_time":"2026-03-10T09:00:00","end_time":"2026-03-10T10:00:00"}`))
		req.Header.Set("Authorization", bearerFor(t, tokens, user))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var booking model.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
		assert.Equal(t, int64(1), booking.ID)
	})

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apperrors.CodeAuthRequired, errorCode(t, rec.Body.Bytes()))
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apperrors.CodeInvalidToken, errorCode(t, rec.Body.Bytes()))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{not json`))
		req.Header.Set("Authorization", bearerFor(t, tokens, user))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.CodeValidation, errorCode(t, rec.Body.Bytes()))
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		svc.createFunc = func(context.Context, auth.Principal, *model.BookingCreate) (*model.Booking, error) {
			return nil, apperrors.Conflict("time slot conflicts with an existing booking")
		}
		t.Cleanup(func() { svc.createFunc = nil })

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
			strings.NewReader(`{"user_id":7,"room_id":3,"start_time":"2026-03-10T09:00:00","end_time":"2026-03-10T10:00:00"}`))
		req.Header.Set("Authorization", bearerFor(t, tokens, user))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apperrors.CodeConflict, errorCode(t, rec.Body.Bytes()))
	})
}

func TestCreateRoute_IdempotentReplay(t *testing.T) {
	var calls int
	svc := &mockBookingService{
		createFunc: func(_ context.Context, p auth.Principal, _ *model.BookingCreate) (*model.Booking, error) {
			calls++
			return &model.Booking{ID: int64(calls), UserID: p.ID, Status: model.BookingActive}, nil
		},
	}
	router, tokens := newTestRouter(t, svc)
	user := &model.User{ID: 7, Username: "owner", Role: model.RoleUser}
	body := `{"user_id":7,"room_id":3,"start_time":"2026-03-10T09:00:00","end_time":"2026-03-10T10:00:00"}`

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
		req.Header.Set("Authorization", bearerFor(t, tokens, user))
		req.Header.Set(middleware.IdempotencyHeader, "retry-abc")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	second := send()

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 1, calls, "retry must not create a second booking")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestUpdateRoute_PassesPathID(t *testing.T) {
	var gotID int64
	var gotUpdate *model.BookingUpdate
	svc := &mockBookingService{
		updateFunc: func(_ context.Context, p auth.Principal, id int64, upd *model.BookingUpdate) (*model.Booking, error) {
			gotID = id
			gotUpdate = upd
			return &model.Booking{ID: id, UserID: p.ID}, nil
		},
	}
	router, tokens := newTestRouter(t, svc)
	user := &model.User{ID: 7, Username: "owner", Role: model.RoleUser}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/42",
		strings.NewReader(`{"end_time":"2026-03-10T11:00:00","force":true}`))
	req.Header.Set("Authorization", bearerFor(t, tokens, user))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)
	require.NotNil(t, gotUpdate)
	assert.Equal(t, "2026-03-10T11:00:00", gotUpdate.EndTime)
	assert.True(t, gotUpdate.Force)
}

func TestUpdateRoute_BadID(t *testing.T) {
	router, tokens := newTestRouter(t, &mockBookingService{})
	user := &model.User{ID: 7, Username: "owner", Role: model.RoleUser}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/abc",
		strings.NewReader(`{"end_time":"2026-03-10T11:00:00"}`))
	req.Header.Set("Authorization", bearerFor(t, tokens, user))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForceCancelRoute_AdminOnly(t *testing.T) {
	router, tokens := newTestRouter(t, &mockBookingService{})

	t.Run("user forbidden at the route", func(t *testing.T) {
		user := &model.User{ID: 7, Username: "owner", Role: model.RoleUser}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/42/force-cancel", nil)
		req.Header.Set("Authorization", bearerFor(t, tokens, user))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		admin := &model.User{ID: 1, Username: "root", Role: model.RoleAdmin}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/42/force-cancel", nil)
		req.Header.Set("Authorization", bearerFor(t, tokens, admin))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCheckRoute(t *testing.T) {
	router, _ := newTestRouter(t, &mockBookingService{
		checkAvailabilityFunc: func(_ context.Context, roomID int64, window timeutil.Window) (bool, error) {
			return false, nil
		},
	})

	t.Run("answers without auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/bookings/check?room_id=3&start=2026-03-10T09:00:00&end=2026-03-10T10:00:00", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var payload checkResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, int64(3), payload.RoomID)
		assert.False(t, payload.Available)
	})

	t.Run("missing params", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/check?room_id=3", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inverted window", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/bookings/check?room_id=3&start=2026-03-10T10:00:00&end=2026-03-10T09:00:00", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestActiveStatusRoute(t *testing.T) {
	router, _ := newTestRouter(t, &mockBookingService{
		activeStatusFunc: func(_ context.Context, roomID int64) (string, error) {
			return "booked", nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/room/3/active-status", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var payload activeStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, int64(3), payload.RoomID)
	assert.Equal(t, "booked", payload.Status)
}
