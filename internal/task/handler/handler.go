// Package handler serves the /api/tasks routes.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"daily-logger/internal/platform/response"
	"daily-logger/internal/server/middleware"
	"daily-logger/internal/task/domain"
	"daily-logger/internal/telemetry"
)

const (
	msgInvalidID = "Invalid task id"
	msgNotFound  = "Task not found"
)

// TaskStore is the subset of the task repository used by the handler.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Task, error)
	Update(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// Handler serves task requests for the authenticated user.
type Handler struct {
	store  TaskStore
	events telemetry.EventEmitter
	log    *zap.Logger
}

// NewHandler returns a task Handler. events may be nil.
func NewHandler(store TaskStore, events telemetry.EventEmitter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, events: events, log: log}
}

// Routes mounts the task endpoints on r. r must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type taskJSON struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Status  string `json:"status"`
	DueDate string `json:"due_date"`
}

func toJSON(t *domain.Task) taskJSON {
	return taskJSON{
		ID:      t.ID,
		UserID:  t.UserID,
		Title:   t.Title,
		Body:    t.Body,
		Status:  string(t.Status),
		DueDate: t.DueDate.Format(domain.DateLayout),
	}
}

type createBody struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	DueDate string `json:"due_date"`
}

type patchBody struct {
	Title   *string `json:"title"`
	Body    *string `json:"body"`
	Status  *string `json:"status"`
	DueDate *string `json:"due_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	var body createBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "All fields are mandatory.")
		return
	}
	t := &domain.Task{UserID: userID, Title: body.Title, Body: body.Body, Status: domain.StatusPending}
	if body.DueDate != "" {
		due, err := domain.ParseDueDate(body.DueDate)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		t.DueDate = due
	}
	if err := t.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.store.Create(r.Context(), t); err != nil {
		h.writeErr(w, r, err)
		return
	}
	telemetry.EmitAsync(h.events, telemetry.NewEvent(telemetry.EventTaskCreated, userID, nil), h.log)
	response.JSON(w, http.StatusCreated, "Task created successfully.", toJSON(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	tasks, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]taskJSON, 0, len(tasks))
	for i := range tasks {
		out = append(out, toJSON(&tasks[i]))
	}
	response.JSON(w, http.StatusOK, "Tasks fetched successfully.", out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, "Task fetched", toJSON(t))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if _, ok := response.PathID(r); !ok {
		response.Error(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	var body patchBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "No fields to update")
		return
	}
	patch := domain.Patch{Title: body.Title, Body: body.Body, Status: body.Status, DueDate: body.DueDate}
	if patch.Empty() {
		response.Error(w, http.StatusBadRequest, "No fields to update")
		return
	}
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := patch.Apply(t); err != nil {
		h.writeErr(w, r, err)
		return
	}
	found, err := h.store.Update(r.Context(), t)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, msgNotFound)
		return
	}
	response.JSON(w, http.StatusOK, "Task updated successfully.", toJSON(t))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	id, ok := response.PathID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	found, err := h.store.Delete(r.Context(), userID, id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, msgNotFound)
		return
	}
	response.JSON(w, http.StatusOK, "Task deleted successfully.", nil)
}

// load resolves the caller's task named by {id}, writing the error response itself on failure.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
		return nil, false
	}
	id, ok := response.PathID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, msgInvalidID)
		return nil, false
	}
	t, err := h.store.GetByID(r.Context(), userID, id)
	if err != nil {
		h.writeErr(w, r, err)
		return nil, false
	}
	if t == nil {
		response.Error(w, http.StatusNotFound, msgNotFound)
		return nil, false
	}
	return t, true
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrFieldRequired):
		response.Error(w, http.StatusBadRequest, "All fields are mandatory.")
	case errors.Is(err, domain.ErrInvalidDate):
		response.Error(w, http.StatusBadRequest, "Invalid date format.")
	case errors.Is(err, domain.ErrInvalidStatus):
		response.Error(w, http.StatusBadRequest, "Status must be one of P, I or C.")
	case errors.Is(err, domain.ErrFieldTooLong):
		response.Error(w, http.StatusBadRequest, "Fields exceed the maximum length.")
	default:
		response.Internal(w, h.log, r, err)
	}
}
