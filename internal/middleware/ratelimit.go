// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"net/http"

	"github.com/iyunix/go-gemchat/internal/ratelimit"
	"github.com/iyunix/go-gemchat/internal/services"
)

func rateLimitKey(name, clientIP string) string {
	return name + ":" + clientIP
}

// RateLimitMiddleware counts every request against limiter and answers 429
// once the client is over the limit. Limiter failures let the request through.
func RateLimitMiddleware(limiter ratelimit.Limiter, ips *ratelimit.ClientIPResolver, name string, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ips.ClientIP(r)

			info, err := limiter.Allow(r.Context(), rateLimitKey(name, clientIP))
			if err != nil {
				logger.Error("[RateLimit] limiter unavailable", "name", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !info.Allowed {
				statusMsg := "RATE LIMITED"
				if info.Banned {
					statusMsg = "BANNED"
				}
				logger.Warn("[RateLimit] blocked request", "name", name, "client_ip", clientIP, "status", statusMsg)

				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))
				}

				errorMsg := "Too many attempts. Please try again later."
				if info.Banned {
					errorMsg = fmt.Sprintf("Too many attempts. Try again in %d minutes.", int(info.RetryAfter.Minutes())+1)
				}
				writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
					"message":    errorMsg,
					"retryAfter": int(info.RetryAfter.Seconds()),
					"banned":     info.Banned,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthSuccessMiddleware resets the client's attempts when the wrapped handler
// succeeds (2xx, or a 3xx redirect for form logins).
func AuthSuccessMiddleware(limiter ratelimit.Limiter, ips *ratelimit.ClientIPResolver, name string, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := newResponseWriter(w)
			next.ServeHTTP(wrapper, r)

			if wrapper.statusCode >= 200 && wrapper.statusCode < 400 {
				clientIP := ips.ClientIP(r)
				if err := limiter.RecordSuccess(r.Context(), rateLimitKey(name, clientIP)); err != nil {
					logger.Warn("[RateLimit] could not reset attempts", "name", name, "error", err)
					return
				}
				logger.Debug("[RateLimit] reset attempts after successful auth", "name", name, "client_ip", clientIP)
			}
		})
	}
}
