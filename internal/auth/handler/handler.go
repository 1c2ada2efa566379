// Package handler serves sign-up, sign-in, refresh and logout under /api/auth.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"daily-logger/internal/auth/service"
	"daily-logger/internal/platform/cookie"
	"daily-logger/internal/platform/response"
	userdomain "daily-logger/internal/user/domain"
)

// AuthService is the subset of the auth service used by the handler.
type AuthService interface {
	Signup(ctx context.Context, fullName, username, email, password string) (*userdomain.User, error)
	Signin(ctx context.Context, email, password string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Handler serves the sign-up, sign-in, refresh and logout routes.
type Handler struct {
	svc AuthService
	jar cookie.Jar
	log *zap.Logger
}

// NewHandler returns an auth Handler that writes cookies through jar.
func NewHandler(svc AuthService, jar cookie.Jar, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, jar: jar, log: log}
}

// Routes mounts the auth endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/signin", h.signin)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
}

type signupBody struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountJSON struct {
	FullName string `json:"full_name,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "All fields are mandatory.")
		return
	}
	u, err := h.svc.Signup(r.Context(), body.FullName, body.Username, body.Email, body.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, "Registered new user successfully.", accountJSON{Username: u.Username, Email: u.Email})
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var body signinBody
	if err := response.Decode(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "All fields are mandatory.")
		return
	}
	res, err := h.svc.Signin(r.Context(), body.Email, body.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.jar.SetTokens(w, res.AccessToken, res.RefreshToken)
	response.JSON(w, http.StatusCreated, "Logged in successfully.", accountJSON{
		FullName: res.User.FullName,
		Username: res.User.Username,
		Email:    res.User.Email,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Refresh(r.Context(), cookie.Read(r, cookie.RefreshName))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.jar.SetTokens(w, res.AccessToken, res.RefreshToken)
	response.JSON(w, http.StatusCreated, "Tokens refreshed successfully.", accountJSON{Username: res.User.Username, Email: res.User.Email})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), cookie.Read(r, cookie.RefreshName)); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.jar.Clear(w)
	response.JSON(w, http.StatusCreated, "Logged out successfully.", nil)
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, userdomain.ErrFieldRequired):
		response.Error(w, http.StatusBadRequest, "All fields are mandatory.")
	case errors.Is(err, userdomain.ErrFieldTooLong):
		response.Error(w, http.StatusBadRequest, "Fields exceed the maximum length.")
	case errors.Is(err, service.ErrEmailExists):
		response.Error(w, http.StatusBadRequest, "Account with this email already exists.")
	case errors.Is(err, service.ErrUsernameExists):
		response.Error(w, http.StatusBadRequest, "Account with this username already exists.")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrMissingRefresh):
		response.Error(w, http.StatusBadRequest, "Refresh token not found.")
	case errors.Is(err, service.ErrRefreshMismatch):
		response.Error(w, http.StatusUnauthorized, "Refresh token does not match database.")
	default:
		response.Internal(w, h.log, r, err)
	}
}
