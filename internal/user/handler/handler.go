// Package handler serves the signed-in user's profile at /api/user.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"daily-logger/internal/platform/response"
	"daily-logger/internal/server/middleware"
	"daily-logger/internal/user/domain"
	"daily-logger/internal/user/service"
)

// ProfileService is the subset of the profile service used by the handler.
type ProfileService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, p service.ProfilePatch) (*domain.User, error)
}

// Handler serves the caller's profile.
type Handler struct {
	svc ProfileService
	log *zap.Logger
}

// NewHandler returns a profile Handler.
func NewHandler(svc ProfileService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts GET and PATCH on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Patch("/", h.update)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	u, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "user fetched successfully.", u.Profile())
}

type profileBody struct {
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	var body profileBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, response.MsgBadBody)
		return
	}
	u, err := h.svc.Update(r.Context(), userID, service.ProfilePatch{
		FullName: body.FullName,
		Username: body.Username,
		Email:    body.Email,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "Profile updated successfully.", u.Profile())
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNoFields):
		response.Error(w, http.StatusBadRequest, "At least one field is required to update.")
	case errors.Is(err, service.ErrEmptyField), errors.Is(err, domain.ErrFieldRequired):
		response.Error(w, http.StatusBadRequest, "Fields cannot be empty.")
	case errors.Is(err, domain.ErrFieldTooLong):
		response.Error(w, http.StatusBadRequest, "Fields exceed the maximum length.")
	case errors.Is(err, domain.ErrUsernameTaken):
		response.Error(w, http.StatusConflict, "Username is already taken.")
	case errors.Is(err, domain.ErrEmailTaken):
		response.Error(w, http.StatusConflict, "Email is already in use.")
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
	default:
		response.Internal(w, h.log, r, err)
	}
}
