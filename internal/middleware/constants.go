// File: internal/middleware/constants.go
package middleware

// Context keys for middleware communication.
type contextKey string

const (
	UserIDKey contextKey = "user_id"
)

// AuthCookieName is the session cookie set on login.
const AuthCookieName = "auth_token"
