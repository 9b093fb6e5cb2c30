// File: internal/middleware/admin_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/iyunix/go-gemchat/internal/auth"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services"
)

// RequireAdmin checks the admin flag of the user put in the context by
// NewAuthMiddleware. It MUST be used AFTER that middleware.
func RequireAdmin(logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsAdmin {
				if ok {
					logger.Warn("[AdminMiddleware] FORBIDDEN: non-admin user attempted admin route", "user_id", user.ID, "path", r.URL.Path)
				}
				writeMessage(w, http.StatusForbidden, "Forbidden: administrator access required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminSession guards the server-rendered admin pages with the admin_token
// cookie. Failures redirect to the login page; authenticated non-admins get
// forbidden.
func AdminSession(resolver TokenResolver, secureCookies bool, forbidden http.Handler, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AdminCookieName)
			if err != nil || cookie.Value == "" {
				query := url.Values{"unauthorized": {"true"}, "returnTo": {r.URL.RequestURI()}}
				http.Redirect(w, r, "/admin/login?"+query.Encode(), http.StatusSeeOther)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), cookie.Value)
			if err != nil {
				var code string
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					code = "SessionExpired"
				case errors.Is(err, repository.ErrUserNotFound):
					code = "UserNotFoundForToken"
				default:
					code = "InvalidSession"
				}
				logger.Warn("[AdminMiddleware] admin session rejected", "path", r.URL.Path, "reason", code, "error", err)
				ClearSessionCookie(w, AdminCookieName, AdminCookiePath, secureCookies)
				http.Redirect(w, r, "/admin/login?error="+code, http.StatusSeeOther)
				return
			}

			if !user.IsAdmin {
				logger.Warn("[AdminMiddleware] FORBIDDEN: non-admin session on admin page", "user_id", user.ID, "path", r.URL.Path)
				forbidden.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
