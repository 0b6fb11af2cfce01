package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomly/internal/bookings/service"
	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
	"roomly/pkg/timeutil"
)

// Per-route rate limits, following the shape of the service's traffic:
// mutations are rare, listing is frequent, the public probe is cheap
// and unauthenticated.
const (
	mutateLimit = 30
	listLimit   = 60
	checkLimit  = 120
	limitWindow = time.Minute
)

type BookingHandler struct {
	service service.BookingService
	guard   *auth.Guard
	limiter *middleware.RateLimiter
	idem    *middleware.IdempotencyCache
	log     *logger.Logger
}

func NewBookingHandler(
	bookingService service.BookingService,
	guard *auth.Guard,
	limiter *middleware.RateLimiter,
	idem *middleware.IdempotencyCache,
	log *logger.Logger,
) *BookingHandler {
	return &BookingHandler{
		service: bookingService,
		guard:   guard,
		limiter: limiter,
		idem:    idem,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	var req model.BookingCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	bookings, err := h.service.List(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var upd model.BookingUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Update(r.Context(), p, id, &upd)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), p, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) ForceCancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.ForceCancel(r.Context(), p, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, booking)
}

type checkResponse struct {
	RoomID    int64 `json:"room_id"`
	Available bool  `json:"available"`
}

func (h *BookingHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	roomIDStr := query.Get("room_id")
	startStr := query.Get("start")
	endStr := query.Get("end")
	if roomIDStr == "" || startStr == "" || endStr == "" {
		httputil.WriteError(w, apperrors.Validation("room_id, start and end are required"))
		return
	}

	roomID, err := strconv.ParseInt(roomIDStr, 10, 64)
	if err != nil {
		httputil.WriteError(w, apperrors.Validation("room_id must be integer"))
		return
	}

	start, err := timeutil.Parse(startStr)
	if err != nil {
		httputil.WriteError(w, apperrors.Validation("start is not a valid timestamp"))
		return
	}
	end, err := timeutil.Parse(endStr)
	if err != nil {
		httputil.WriteError(w, apperrors.Validation("end is not a valid timestamp"))
		return
	}
	window, err := timeutil.NewWindow(start, end)
	if err != nil {
		httputil.WriteError(w, apperrors.Validation("end must be after start"))
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), roomID, window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, checkResponse{RoomID: roomID, Available: available})
}

type activeStatusResponse struct {
	RoomID int64  `json:"room_id"`
	Status string `json:"status"`
}

func (h *BookingHandler) ActiveStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := h.service.ActiveStatus(r.Context(), roomID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, activeStatusResponse{RoomID: roomID, Status: status})
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings",
		h.guard.Require(h.limiter.PerUser("bookings:create", mutateLimit, limitWindow,
			h.idem.Wrap("bookings:create", h.Create))))
	router.GET("/api/v1/bookings",
		h.guard.Require(h.limiter.PerUser("bookings:list", listLimit, limitWindow, h.List)))
	router.PATCH("/api/v1/bookings/id/:id",
		h.guard.Require(h.limiter.PerUser("bookings:update", mutateLimit, limitWindow, h.Update)))
	router.DELETE("/api/v1/bookings/id/:id",
		h.guard.Require(h.limiter.PerUser("bookings:cancel", mutateLimit, limitWindow, h.Cancel)))
	router.POST("/api/v1/bookings/id/:id/force-cancel",
		h.guard.RequireRoles(h.limiter.PerUser("bookings:force-cancel", mutateLimit, limitWindow, h.ForceCancel), model.RoleAdmin))
	router.GET("/api/v1/bookings/check",
		h.limiter.PerIP("bookings:check", checkLimit, limitWindow, h.Check))
	router.GET("/api/v1/bookings/room/:id/active-status", h.ActiveStatus)
}
