package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/backend-resto/internal/common"
)

// Guard applies a Limiter in front of a handler. KeyFn derives the window
// key from the request; a nil KeyFn disables the guard. Redis failures fail
// open so a cache outage never blocks the register.
type Guard struct {
	Limiter Limiter
	KeyFn   func(*http.Request) string
	OnError func(error)
}

func (g Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.KeyFn == nil {
			next.ServeHTTP(w, r)
			return
		}

		d, err := g.Limiter.Take(r.Context(), g.KeyFn(r))
		if err != nil {
			if g.OnError != nil {
				g.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(max(g.Limiter.Max, 0)))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(time.Until(d.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
