package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomly/internal/users/service"
	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
)

// Registration and login are brute-force targets, so their limits are
// much tighter than the rest of the surface.
const (
	registerLimit = 5
	loginLimit    = 10
	generalLimit  = 60
	limitWindow   = time.Minute
)

type UserHandler struct {
	service service.UserService
	guard   *auth.Guard
	limiter *middleware.RateLimiter
	log     *logger.Logger
}

func NewUserHandler(
	userService service.UserService,
	guard *auth.Guard,
	limiter *middleware.RateLimiter,
	log *logger.Logger,
) *UserHandler {
	return &UserHandler{
		service: userService,
		guard:   guard,
		limiter: limiter,
		log:     log,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var principal *auth.Principal
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		principal = &p
	}

	user, err := h.service.Register(r.Context(), principal, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, user)
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, loginResponse{Token: token, User: user})
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := h.service.GetAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, users)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	user, err := h.service.GetByID(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	var upd model.UserSelfUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.UpdateSelf(r.Context(), p, &upd)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	if err := h.service.DeleteSelf(r.Context(), p); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	user, err := h.service.GetByUsername(r.Context(), p, ps.ByName("username"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) AdminUpdate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var upd model.UserAdminUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.AdminUpdate(r.Context(), ps.ByName("username"), &upd)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) BookingHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.AuthRequired())
		return
	}

	history, err := h.service.BookingHistory(r.Context(), p, ps.ByName("username"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, history)
}

func (h *UserHandler) DeleteByUsername(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteByUsername(r.Context(), ps.ByName("username")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

type statusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Status is the public existence probe the bookings service calls. It
// confirms the id and nothing else.
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if _, err := h.service.GetByID(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, statusResponse{ID: id, Status: "ok"})
}

type basicResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Basic is the public minimal projection used for display enrichment.
func (h *UserHandler) Basic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, basicResponse{ID: user.ID, Username: user.Username})
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/users/register",
		h.guard.Optional(h.limiter.PerIP("users:register", registerLimit, limitWindow, h.Register)))
	router.POST("/api/v1/auth/login",
		h.limiter.PerIP("users:login", loginLimit, limitWindow, h.Login))
	router.GET("/api/v1/users",
		h.guard.RequireRoles(h.GetAll, model.RoleAdmin))
	router.GET("/api/v1/users/me",
		h.guard.Require(h.limiter.PerUser("users:me", generalLimit, limitWindow, h.Me)))
	router.PATCH("/api/v1/users/me",
		h.guard.Require(h.limiter.PerUser("users:me", generalLimit, limitWindow, h.UpdateMe)))
	router.DELETE("/api/v1/users/me",
		h.guard.Require(h.limiter.PerUser("users:me", generalLimit, limitWindow, h.DeleteMe)))
	router.GET("/api/v1/users/name/:username",
		h.guard.Require(h.GetByUsername))
	router.PATCH("/api/v1/users/name/:username",
		h.guard.RequireRoles(h.AdminUpdate, model.RoleAdmin))
	router.DELETE("/api/v1/users/name/:username",
		h.guard.RequireRoles(h.DeleteByUsername, model.RoleAdmin))
	router.GET("/api/v1/users/name/:username/bookings",
		h.guard.Require(h.limiter.PerUser("users:me", generalLimit, limitWindow, h.BookingHistory)))
	router.GET("/api/v1/users/id/:id/status", h.Status)
	router.GET("/api/v1/users/id/:id/basic", h.Basic)
}
