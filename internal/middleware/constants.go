// File: internal/middleware/constants.go
package middleware

// Context keys for middleware communication
type contextKey string

const (
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "request_id"
)

const (
	// AuthCookieName carries the API session token.
	AuthCookieName = "app_token"
	// AdminCookieName carries the admin panel session token, scoped to /admin.
	AdminCookieName = "admin_token"
	AdminCookiePath = "/admin"

	RequestIDHeader = "X-Request-ID"
)
