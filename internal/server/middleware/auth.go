package middleware

import (
	"net/http"
	"strings"

	"daily-logger/internal/platform/cookie"
	"daily-logger/internal/platform/response"
	"daily-logger/internal/security"
)

const bearerPrefix = "bearer "

// AccessValidator validates access tokens.
type AccessValidator interface {
	ValidateAccess(token string) (security.Subject, error)
}

// RequireAuth admits requests carrying a valid access token in the access_token cookie
// or an Authorization: Bearer header, and puts the caller Identity in the request context.
// Anything else gets the 401 envelope.
func RequireAuth(tokens AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookie.Read(r, cookie.AccessName)
			if token == "" {
				token = extractBearer(r)
			}
			if token == "" {
				response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
				return
			}
			sub, err := tokens.ValidateAccess(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, response.MsgUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: sub.UserID, Username: sub.Username, Email: sub.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
