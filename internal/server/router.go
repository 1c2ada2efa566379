// Package server assembles the HTTP router: the middleware stack, the public auth routes
// and the authenticated API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"daily-logger/internal/audit"
	"daily-logger/internal/platform/response"
	"daily-logger/internal/ratelimit"
	"daily-logger/internal/server/middleware"
)

// Deps holds what the router mounts. Route fields are handler Routes method values;
// a nil field leaves that prefix unmounted.
type Deps struct {
	// Tokens validates access tokens for the authenticated API. Required when any protected route is set.
	Tokens middleware.AccessValidator
	// Audit records authenticated mutations. Nil disables auditing.
	Audit audit.AuditLogger
	// AuthLimiter throttles /api/auth per client IP. Nil disables limiting.
	AuthLimiter *ratelimit.Limiter
	// Health serves /healthz.
	Health http.Handler

	Auth    func(chi.Router)
	Sleep   func(chi.Router)
	Tasks   func(chi.Router)
	Logs    func(chi.Router)
	Ratings func(chi.Router)
	Profile func(chi.Router)
	Admin   func(chi.Router)

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Log            *zap.Logger
}

// NewRouter returns the application handler.
//
// Route map:
//   - /healthz            → health handler (public)
//   - /api/auth/*         → auth handler (public, rate limited)
//   - /api/sleep/*        → sleep handler
//   - /api/tasks/*        → task handler
//   - /api/logs/*         → journal handler
//   - /api/day-rating     → journal ratings
//   - /api/user           → profile handler
//   - /api/admin/*        → admin handler
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(log))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StoreClientIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Telemetry(deps.TracerProvider, deps.MeterProvider))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if deps.Health != nil {
		r.Method(http.MethodGet, "/healthz", deps.Health)
	}

	if deps.Auth != nil {
		r.Route("/api/auth", func(ar chi.Router) {
			if deps.AuthLimiter != nil {
				ar.Use(ratelimit.Middleware(deps.AuthLimiter, log))
			}
			deps.Auth(ar)
		})
	}

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(deps.Tokens))
		if deps.Audit != nil {
			pr.Use(middleware.Audit(deps.Audit))
		}
		mount(pr, "/api/sleep", deps.Sleep)
		mount(pr, "/api/tasks", deps.Tasks)
		mount(pr, "/api/logs", deps.Logs)
		mount(pr, "/api/day-rating", deps.Ratings)
		mount(pr, "/api/user", deps.Profile)
		mount(pr, "/api/admin", deps.Admin)
	})
	return r
}

func mount(r chi.Router, prefix string, routes func(chi.Router)) {
	if routes != nil {
		r.Route(prefix, routes)
	}
}
