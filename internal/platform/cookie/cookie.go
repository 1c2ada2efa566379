// Package cookie sets and clears the auth cookies.
package cookie

import (
	"net/http"
	"time"
)

// Cookie names and lifetimes.
const (
	AccessName  = "access_token"
	RefreshName = "refresh_token"

	AccessMaxAge  = 3600
	RefreshMaxAge = 7 * 24 * 3600
)

// Jar writes auth cookies with the attributes for the current environment.
// Production cookies are Secure with SameSite=None; otherwise SameSite=Lax.
type Jar struct {
	Secure bool
}

// SetTokens writes both cookies.
func (j Jar) SetTokens(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, j.build(AccessName, access, AccessMaxAge))
	http.SetCookie(w, j.build(RefreshName, refresh, RefreshMaxAge))
}

// Clear expires both cookies.
func (j Jar) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessName, RefreshName} {
		c := j.build(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (j Jar) build(name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if j.Secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// Read returns the named cookie's value, or "" when absent.
func Read(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
