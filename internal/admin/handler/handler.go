// Package handler serves the admin panel under /api/admin.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"daily-logger/internal/platform/response"
	"daily-logger/internal/policy/engine"
	"daily-logger/internal/security"
	"daily-logger/internal/server/middleware"
	"daily-logger/internal/telemetry"
	userdomain "daily-logger/internal/user/domain"
)

// UserAdmin is the subset of the user repository used by the admin panel.
type UserAdmin interface {
	List(ctx context.Context) ([]*userdomain.User, error)
	DeleteWithData(ctx context.Context, id int64) (bool, error)
}

// Handler serves the admin panel routes.
type Handler struct {
	users  UserAdmin
	policy engine.Evaluator
	secret string
	events telemetry.EventEmitter
	log    *zap.Logger
}

// NewHandler returns an admin Handler. Requests must present secret; policy makes the final decision.
func NewHandler(users UserAdmin, policy engine.Evaluator, secret string, events telemetry.EventEmitter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{users: users, policy: policy, secret: secret, events: events, log: log}
}

// Routes mounts the admin endpoints on r. r must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.listUsers)
	r.Delete("/{id}", h.deleteUser)
}

type secretBody struct {
	Secret string `json:"secret"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	var body secretBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, response.MsgBadBody)
		return
	}
	allowed, err := h.allow(r, body.Secret, engine.ActionListUsers)
	if err != nil {
		response.Internal(w, h.log, r, err)
		return
	}
	if !allowed {
		response.JSON(w, http.StatusCreated, "Not an admin.", nil)
		return
	}
	users, err := h.users.List(r.Context())
	if err != nil {
		response.Internal(w, h.log, r, err)
		return
	}
	out := make([]userdomain.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	response.JSON(w, http.StatusCreated, "Logged in successfully.", out)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	allowed, err := h.allow(r, r.URL.Query().Get("secret"), engine.ActionDeleteUser)
	if err != nil {
		response.Internal(w, h.log, r, err)
		return
	}
	if !allowed {
		response.Error(w, http.StatusForbidden, "Forbidden: Invalid Admin Secret.")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid User ID.")
		return
	}
	found, err := h.users.DeleteWithData(r.Context(), id)
	if err != nil {
		response.Internal(w, h.log, r, err)
		return
	}
	if found {
		requester, _ := middleware.UserID(r.Context())
		telemetry.EmitAsync(h.events, telemetry.NewEvent(telemetry.EventUserDeleted, requester, map[string]string{
			"deleted_user_id": strconv.FormatInt(id, 10),
		}), h.log)
	} else {
		h.log.Info("admin: delete of unknown user", zap.Int64("user_id", id))
	}
	response.JSON(w, http.StatusOK, fmt.Sprintf("User %d deleted successfully.", id), nil)
}

func (h *Handler) allow(r *http.Request, secret, action string) (bool, error) {
	_, authenticated := middleware.UserID(r.Context())
	return h.policy.AllowAdmin(r.Context(), engine.AdminInput{
		Authenticated: authenticated,
		SecretValid:   secret != "" && security.SecretEqual(secret, h.secret),
		Action:        action,
	})
}
