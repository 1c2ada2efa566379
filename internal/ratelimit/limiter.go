package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"daily-logger/internal/platform/response"
)

const keyPrefix = "ratelimit:"

// Limiter allows at most limit hits per key in each window.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewLimiter returns a Limiter. A limit of zero or less disables limiting.
func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{store: store, limit: int64(limit), window: window}
}

// Allow records a hit for key. When the key is over its limit it returns false and the
// time until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l == nil || l.store == nil || l.limit <= 0 {
		return true, 0, nil
	}
	count, ttl, err := l.store.IncrementWindow(ctx, keyPrefix+key, l.window)
	if err != nil {
		return false, 0, err
	}
	if count > l.limit {
		if ttl <= 0 {
			ttl = time.Second
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

// Middleware limits requests per client IP. Store failures let the request through.
func Middleware(l *Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn("rate limit check failed", zap.String("path", r.URL.Path), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				secs := int(retryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				response.Error(w, http.StatusTooManyRequests, response.MsgTooMany)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
