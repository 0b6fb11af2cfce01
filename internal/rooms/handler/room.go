package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomly/internal/rooms/service"
	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
	"roomly/pkg/timeutil"
)

const (
	mutateLimit = 30
	adminLimit  = 60
	limitWindow = time.Minute
)

type RoomHandler struct {
	service service.RoomService
	guard   *auth.Guard
	limiter *middleware.RateLimiter
	log     *logger.Logger
}

func NewRoomHandler(
	roomService service.RoomService,
	guard *auth.Guard,
	limiter *middleware.RateLimiter,
	log *logger.Logger,
) *RoomHandler {
	return &RoomHandler{
		service: roomService,
		guard:   guard,
		limiter: limiter,
		log:     log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RoomCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	room, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, room)
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	activeOnly := r.URL.Query().Get("active") == "true"

	rooms, err := h.service.GetAll(r.Context(), activeOnly)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, rooms)
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	room, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, room)
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var upd model.RoomUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		httputil.WriteError(w, err)
		return
	}

	room, err := h.service.Update(r.Context(), id, &upd)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, room)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// Available lists active rooms matching the query filters. start and end
// must be given together; when present they narrow the listing to rooms
// free for that window.
func (h *RoomHandler) Available(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	var filter model.RoomFilter
	if raw := q.Get("min_capacity"); raw != "" {
		minCapacity, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || minCapacity < 0 {
			httputil.WriteError(w, apperrors.Validation("min_capacity must be a non-negative integer"))
			return
		}
		filter.MinCapacity = minCapacity
	}
	filter.Location = q.Get("location")
	filter.Equipment = q.Get("equipment")

	window, err := parseWindowParams(q.Get("start"), q.Get("end"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rooms, err := h.service.Available(r.Context(), filter, window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, rooms)
}

func parseWindowParams(rawStart, rawEnd string) (*timeutil.Window, error) {
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}
	if rawStart == "" || rawEnd == "" {
		return nil, apperrors.Validation("start and end must be provided together")
	}

	start, err := timeutil.Parse(rawStart)
	if err != nil {
		return nil, apperrors.Validation("start must be a valid timestamp")
	}
	end, err := timeutil.Parse(rawEnd)
	if err != nil {
		return nil, apperrors.Validation("end must be a valid timestamp")
	}

	window, err := timeutil.NewWindow(start, end)
	if err != nil {
		return nil, apperrors.Validation("end must be after start")
	}
	return &window, nil
}

func (h *RoomHandler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := h.service.LiveStatus(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, status)
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms",
		h.guard.RequireRoles(h.limiter.PerUser("rooms:mutate", mutateLimit, limitWindow, h.Create), model.RoleAdmin))
	router.GET("/api/v1/rooms", h.GetAll)
	router.GET("/api/v1/rooms/available", h.Available)
	router.GET("/api/v1/rooms/id/:id", h.GetByID)
	router.PATCH("/api/v1/rooms/id/:id",
		h.guard.RequireRoles(h.limiter.PerUser("rooms:mutate", adminLimit, limitWindow, h.Update), model.RoleAdmin))
	router.DELETE("/api/v1/rooms/id/:id",
		h.guard.RequireRoles(h.limiter.PerUser("rooms:mutate", adminLimit, limitWindow, h.Delete), model.RoleAdmin))
	router.GET("/api/v1/rooms/id/:id/status", h.Status)
}
