// Package handler serves the /api/logs and /api/day-rating routes.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"daily-logger/internal/journal/domain"
	"daily-logger/internal/journal/service"
	"daily-logger/internal/platform/response"
	"daily-logger/internal/server/middleware"
)

const (
	msgInvalidID = "Invalid log id"
	msgNotFound  = "Log not found"
	msgMandatory = "All fields are mandatory."
)

// JournalService is the subset of the journal service used by the handler.
type JournalService interface {
	Create(ctx context.Context, userID int64, summary string, rating json.RawMessage, date string) (*domain.Log, error)
	List(ctx context.Context, userID int64) ([]domain.Log, error)
	Get(ctx context.Context, userID, id int64) (*domain.Log, error)
	Update(ctx context.Context, userID, id int64, p service.Patch) (*domain.Log, error)
	Delete(ctx context.Context, userID, id int64) error
	Ratings(ctx context.Context, userID int64) ([]domain.Rating, error)
}

// Handler serves journal logs and day ratings for the authenticated user.
type Handler struct {
	svc JournalService
	log *zap.Logger
}

// NewHandler returns a journal Handler.
func NewHandler(svc JournalService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts the log endpoints on r. r must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

// RatingRoutes mounts the day-rating view on r.
func (h *Handler) RatingRoutes(r chi.Router) {
	r.Get("/", h.ratings)
}

type logJSON struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Summary string `json:"summary"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
}

func toJSON(l *domain.Log) logJSON {
	return logJSON{ID: l.ID, UserID: l.UserID, Summary: l.Summary, Rating: l.Rating, Date: l.Date.Format(domain.DateLayout)}
}

type ratingJSON struct {
	Date   string `json:"date"`
	Rating int    `json:"rating"`
}

type createBody struct {
	Summary string          `json:"summary"`
	Rating  json.RawMessage `json:"rating"`
	Date    string          `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	var body createBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, msgMandatory)
		return
	}
	if strings.TrimSpace(body.Summary) == "" || body.Rating == nil || body.Date == "" {
		response.Error(w, http.StatusBadRequest, msgMandatory)
		return
	}
	l, err := h.svc.Create(r.Context(), userID, body.Summary, body.Rating, body.Date)
	if err != nil {
		var dup *service.DuplicateError
		switch {
		case errors.As(err, &dup):
			var existing any
			if dup.Existing != nil {
				existing = toJSON(dup.Existing)
			}
			response.JSON(w, http.StatusBadRequest, "Summary for this date already exists.", existing)
		case errors.Is(err, domain.ErrInvalidRating):
			response.Error(w, http.StatusBadRequest, "Rating must be a number.")
		case errors.Is(err, domain.ErrInvalidDate):
			response.Error(w, http.StatusBadRequest, "Date must be YYYY-MM-DD.")
		case errors.Is(err, domain.ErrSummaryRequired):
			response.Error(w, http.StatusBadRequest, msgMandatory)
		default:
			response.Internal(w, h.log, r, err)
		}
		return
	}
	response.JSON(w, http.StatusCreated, "Summary created successfully.", toJSON(l))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	logs, err := h.svc.List(r.Context(), userID)
	if err != nil {
		response.Internal(w, h.log, r, err)
		return
	}
	out := make([]logJSON, 0, len(logs))
	for i := range logs {
		out = append(out, toJSON(&logs[i]))
	}
	response.JSON(w, http.StatusOK, "Logs fetched successfully.", out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	l, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "Log fetched", toJSON(l))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if err := response.Decode(r, &fields); err != nil {
		response.Error(w, http.StatusBadRequest, "No fields provided for update.")
		return
	}
	patch := service.Patch{Keys: len(fields), Rating: fields["rating"]}
	if raw, ok := fields["summary"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			response.Error(w, http.StatusBadRequest, "Summary cannot be empty.")
			return
		}
		patch.Summary = &s
	}
	l, err := h.svc.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "Log updated successfully.", toJSON(l))
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
	response.JSON(w, http.StatusOK, "Log deleted successfully.", nil)
}

func (h *Handler) ratings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	list, err := h.svc.Ratings(r.Context(), userID)
	if err != nil {
		response.Internal(w, h.log, r, err)
		return
	}
	out := make([]ratingJSON, 0, len(list))
	for _, rt := range list {
		out = append(out, ratingJSON{Date: rt.Date.Format(domain.DateLayout), Rating: rt.Rating})
	}
	response.JSON(w, http.StatusOK, "Ratings fetched successfully.", out)
}

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
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, service.ErrNoFields):
		response.Error(w, http.StatusBadRequest, "No fields provided for update.")
	case errors.Is(err, service.ErrNothingToDo):
		response.Error(w, http.StatusBadRequest, "Nothing valid to update.")
	case errors.Is(err, domain.ErrSummaryRequired):
		response.Error(w, http.StatusBadRequest, "Summary cannot be empty.")
	case errors.Is(err, domain.ErrInvalidRating):
		response.Error(w, http.StatusBadRequest, "Rating must be a valid number.")
	default:
		response.Internal(w, h.log, r, err)
	}
}
