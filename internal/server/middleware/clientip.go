package middleware

import (
	"net"
	"net/http"
)

// StoreClientIP records the request's client IP in the context. Run it after chi's RealIP
// so X-Forwarded-For / X-Real-IP have already been applied to RemoteAddr.
func StoreClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
	})
}
