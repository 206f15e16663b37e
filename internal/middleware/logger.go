// File: internal/middleware/logger.go
package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/ratelimit"
)

// LoggingMiddleware logs one line per request with the response status
// and handling duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		log.Printf("%s %s %d from %s in %v",
			r.Method, r.RequestURI, wrapper.statusCode,
			ratelimit.ClientIP(r), time.Since(start))
	})
}
