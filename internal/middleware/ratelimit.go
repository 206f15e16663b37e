// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/ratelimit"
)

// RateLimitMiddleware applies an IP-keyed limiter to a route group.
func RateLimitMiddleware(limiter *ratelimit.Limiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.ClientIP(r)
			allowed, status := limiter.Allow(clientIP)

			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", status.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", status.ResetTime.Unix()))

			if !allowed {
				state := "RATE LIMITED"
				if status.Banned {
					state = "BANNED"
				}
				log.Printf("[RateLimit] Blocked %s request from %s - %s", name, clientIP, state)

				if status.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", status.RetryAfter.Seconds()))
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				msg := "Too many attempts. Please try again later."
				if status.Banned {
					msg = fmt.Sprintf("Too many failed attempts. Temporarily blocked; try again in %d minutes.",
						int(status.RetryAfter.Minutes()))
				}
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      msg,
					"retryAfter": int(status.RetryAfter.Seconds()),
					"banned":     status.Banned,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthSuccessMiddleware resets the caller's limiter bucket after a 2xx
// response, so a successful login does not keep counting against them.
func AuthSuccessMiddleware(limiter *ratelimit.Limiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			if wrapper.statusCode >= 200 && wrapper.statusCode < 300 {
				clientIP := ratelimit.ClientIP(r)
				limiter.Reset(clientIP)
				log.Printf("[RateLimit] Reset attempts for %s from %s", name, clientIP)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
// It passes Flush through so streaming handlers still work wrapped.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
