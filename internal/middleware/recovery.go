package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/iyunix/go-gemchat/internal/services"
)

// RecoverPanic turns a handler panic into a 500. exposeDetails adds the panic
// value to the body and is meant for development only.
func RecoverPanic(logger services.Logger, exposeDetails bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("[PANIC] recovered", "path", r.URL.Path, "panic", err, "stack", string(debug.Stack()))

					body := map[string]string{"message": "Something went wrong on our end."}
					if exposeDetails {
						body["error"] = fmt.Sprint(err)
					}
					w.Header().Set("Connection", "close")
					writeJSON(w, http.StatusInternalServerError, body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
