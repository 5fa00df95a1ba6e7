// File: internal/middleware/recovery.go
package middleware

import (
	"net/http"
	"runtime/debug"
)

func RecoverPanic(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic serving request", "panic", err, "path", r.URL.Path, "stack", string(debug.Stack()))
					w.Header().Set("Connection", "close")
					writeError(w, http.StatusInternalServerError, "Algo deu errado do nosso lado.")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
