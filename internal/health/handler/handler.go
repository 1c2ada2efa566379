// Package handler serves /healthz for load balancers and orchestrators.
package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"daily-logger/internal/platform/response"
)

const checkTimeout = 2 * time.Second

// Pinger checks database reachability (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate (e.g. the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves /healthz.
type Handler struct {
	db     Pinger
	policy PolicyChecker
	log    *zap.Logger
}

// NewHandler returns a health Handler. A nil db or policy skips that check.
func NewHandler(db Pinger, policy PolicyChecker, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{db: db, policy: policy, log: log}
}

// ServeHTTP reports 200 when every configured dependency answers and 503 otherwise.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn("health: database ping failed", zap.Error(err))
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			h.log.Warn("health: policy engine check failed", zap.Error(err))
			response.Error(w, http.StatusServiceUnavailable, "policy engine unavailable")
			return
		}
	}
	response.JSON(w, http.StatusOK, "ok", nil)
}
