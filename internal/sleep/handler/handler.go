// Package handler serves the /api/sleep routes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"daily-logger/internal/platform/response"
	"daily-logger/internal/server/middleware"
	"daily-logger/internal/sleep/domain"
	"daily-logger/internal/sleep/service"
)

const msgInvalidID = "Invalid sleep id"

// SleepService is the subset of the sleep service used by the handler.
type SleepService interface {
	Create(ctx context.Context, userID int64, start, end string) (*domain.Session, error)
	List(ctx context.Context, userID int64) ([]domain.Session, error)
	Get(ctx context.Context, userID, id int64) (*domain.Session, error)
	Update(ctx context.Context, userID, id int64, p service.Patch) (*domain.Session, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Handler serves sleep session requests for the authenticated user.
type Handler struct {
	svc SleepService
	log *zap.Logger
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc SleepService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts the sleep endpoints on r. r must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type sessionJSON struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func toJSON(s *domain.Session) sessionJSON {
	return sessionJSON{ID: s.ID, UserID: s.UserID, StartTime: s.Start.UTC(), EndTime: s.End.UTC()}
}

type sleepBody struct {
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	var body sleepBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, domain.ReasonMissingFields)
		return
	}
	sess, err := h.svc.Create(r.Context(), userID, deref(body.StartTime), deref(body.EndTime))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, "Sleep record created successfully.", toJSON(sess))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	list, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]sessionJSON, 0, len(list))
	for i := range list {
		out = append(out, toJSON(&list[i]))
	}
	response.JSON(w, http.StatusOK, "Sleep records fetched successfully.", out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "Sleep record fetched", toJSON(sess))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var body sleepBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, domain.ReasonNoFields)
		return
	}
	sess, err := h.svc.Update(r.Context(), userID, id, service.Patch{StartTime: body.StartTime, EndTime: body.EndTime})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "Sleep record updated successfully.", toJSON(sess))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "Sleep record deleted successfully.", nil)
}

// target reads the caller and the {id} parameter, writing the error response itself when either is missing.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return 0, 0, false
	}
	id, ok := response.PathID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, msgInvalidID)
		return 0, 0, false
	}
	return userID, id, true
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Sleep record not found")
	case errors.Is(err, service.ErrUnknownUser):
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
	default:
		response.Internal(w, h.log, r, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
