// Package service implements sign-up, sign-in, token refresh and logout.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"daily-logger/internal/audit"
	"daily-logger/internal/security"
	"daily-logger/internal/telemetry"
	userdomain "daily-logger/internal/user/domain"
)

// Sentinel errors for auth service; handler maps them to HTTP status codes.
var (
	ErrMissingFields      = errors.New("all fields are mandatory")
	ErrEmailExists        = errors.New("account with this email already exists")
	ErrUsernameExists     = errors.New("account with this username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingRefresh     = errors.New("refresh token not found")
	ErrRefreshMismatch    = errors.New("refresh token does not match database")
)

// AuthResult holds the outcome of Signin or Refresh: the user and a fresh token pair.
type AuthResult struct {
	User         *userdomain.User
	AccessToken  string
	RefreshToken string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	SetRefreshTokenHash(ctx context.Context, id int64, hash string) error
	SwapRefreshTokenHash(ctx context.Context, id int64, oldHash, newHash string) (bool, error)
}

// AuthService implements password sign-up and sign-in with rotating refresh tokens.
// Each user holds at most one live refresh token; its SHA-256 hash is stored on the user row.
type AuthService struct {
	users  UserRepo
	hasher *security.Hasher
	tokens *security.TokenProvider
	audit  audit.AuditLogger
	events telemetry.EventEmitter
	log    *zap.Logger
}

// NewAuthService returns an AuthService with the given dependencies. auditLogger, events and log may be nil.
func NewAuthService(
	users UserRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditLogger audit.AuditLogger,
	events telemetry.EventEmitter,
	log *zap.Logger,
) *AuthService {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: auditLogger, events: events, log: log}
}

// Signup creates a user. All fields are required after trimming; email and username must be unused.
func (s *AuthService) Signup(ctx context.Context, fullName, username, email, password string) (*userdomain.User, error) {
	fullName, username, email = strings.TrimSpace(fullName), strings.TrimSpace(username), strings.TrimSpace(email)
	if fullName == "" || username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}
	existing, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &userdomain.User{Username: username, FullName: fullName, Email: email, PasswordHash: hashed}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, userdomain.ErrEmailTaken):
			return nil, ErrEmailExists
		case errors.Is(err, userdomain.ErrUsernameTaken):
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionSignup, "auth", "")
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventSignedUp, user.ID, nil), s.log)
	return user, nil
}

// Signin authenticates with email/password and issues a token pair. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.CompareDummy(password)
		s.signinFailed(ctx, 0, "unknown_email")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.signinFailed(ctx, user.ID, "bad_password")
		return nil, ErrInvalidCredentials
	}
	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, security.HashToken(res.RefreshToken)); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionSignin, "auth", "")
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventSignedIn, user.ID, nil), s.log)
	return res, nil
}

// Refresh validates the refresh token against its signature, expiry and the stored hash,
// then rotates it. A token that has already been rotated away is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	user, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	ok, err := s.users.SwapRefreshTokenHash(ctx, user.ID, user.RefreshTokenHash, security.HashToken(res.RefreshToken))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.refreshRejected(ctx, user.ID, "superseded")
		return nil, ErrRefreshMismatch
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionRefresh, "auth", "")
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventRefreshed, user.ID, nil), s.log)
	return res, nil
}

// Logout clears the stored refresh hash for the user the token belongs to.
// The token must still be the user's live refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	ok, err := s.users.SwapRefreshTokenHash(ctx, user.ID, user.RefreshTokenHash, "")
	if err != nil {
		return err
	}
	if !ok {
		return ErrRefreshMismatch
	}
	s.audit.LogEvent(ctx, user.ID, audit.ActionLogout, "auth", "")
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventLoggedOut, user.ID, nil), s.log)
	return nil
}

func (s *AuthService) verifyRefresh(ctx context.Context, refreshToken string) (*userdomain.User, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrMissingRefresh
	}
	sub, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		s.refreshRejected(ctx, 0, "invalid_token")
		return nil, ErrRefreshMismatch
	}
	user, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !security.TokenHashEqual(refreshToken, user.RefreshTokenHash) {
		s.refreshRejected(ctx, sub.UserID, "hash_mismatch")
		return nil, ErrRefreshMismatch
	}
	return user, nil
}

func (s *AuthService) issue(user *userdomain.User) (*AuthResult, error) {
	subject := security.Subject{UserID: user.ID, Username: user.Username, Email: user.Email}
	access, _, err := s.tokens.IssueAccess(subject)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(subject)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) signinFailed(ctx context.Context, userID int64, reason string) {
	s.audit.LogEvent(ctx, userID, audit.ActionSigninFailure, "auth", reason)
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventSignInFailed, userID, map[string]string{"reason": reason}), s.log)
}

func (s *AuthService) refreshRejected(ctx context.Context, userID int64, reason string) {
	s.audit.LogEvent(ctx, userID, audit.ActionRefreshReject, "auth", reason)
	telemetry.EmitAsync(s.events, telemetry.NewEvent(telemetry.EventRefreshRejected, userID, map[string]string{
		"reason":  reason,
		"user_id": strconv.FormatInt(userID, 10),
	}), s.log)
}
