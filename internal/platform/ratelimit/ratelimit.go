// Package ratelimit throttles inbound requests with a shared token bucket.
package ratelimit

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket shared by every request on a route.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a Limiter allowing rps requests per second with the given burst.
// A non-positive rps returns nil, which Middleware treats as unlimited.
func New(rps, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < rps {
		burst = rps
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether one more request may proceed now.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
func Middleware(l *Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
