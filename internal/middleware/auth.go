package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iyunix/go-gemchat/internal/auth"
	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services"
)

// TokenResolver turns a session token into its user.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

// NewAuthMiddleware authenticates API requests from the app_token cookie or,
// failing that, an Authorization: Bearer header.
func NewAuthMiddleware(resolver TokenResolver, secureCookies bool, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := tokenFromRequest(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, no token.")
				return
			}

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				var message string
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					message = "Not authorized, token expired."
				case errors.Is(err, auth.ErrTokenInvalid):
					message = "Not authorized, token invalid."
				case errors.Is(err, repository.ErrUserNotFound):
					message = "Not authorized, user not found."
				default:
					logger.Error("[AuthMiddleware] token resolution failed", "path", r.URL.Path, "error", err)
					writeMessage(w, http.StatusInternalServerError, "Authentication failed.")
					return
				}
				logger.Warn("[AuthMiddleware] rejected token", "path", r.URL.Path, "reason", message)
				if fromCookie {
					ClearSessionCookie(w, AuthCookieName, "/", secureCookies)
				}
				writeMessage(w, http.StatusUnauthorized, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func tokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := r.Header.Get("Authorization")
	if scheme, value, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value), false
	}
	return "", false
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext returns the user stored by the auth middleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}
