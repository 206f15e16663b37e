// File: internal/middleware/admin.go
package middleware

import (
	"log"
	"net/http"

	userrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/user"
)

// RequireAdmin checks the authenticated user's admin flag. It must run
// after the JWT middleware.
func RequireAdmin(users userrepo.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Printf("[AdminMiddleware] Forbidden: no valid userID in context for path %s", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				log.Printf("[AdminMiddleware] Forbidden: could not load user %d: %v", userID, err)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if !user.IsAdmin {
				log.Printf("[AdminMiddleware] FORBIDDEN: non-admin user %q (ID: %d) attempted admin route %s", user.Username, user.ID, r.URL.Path)
				http.Error(w, "Forbidden: you do not have permission to access this resource.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
