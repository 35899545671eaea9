package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/fieldscript/fieldscript/internal/apperr"
)

// Recoverer converts a handler panic into a structured 500 response. The
// full panic value and stack are logged server-side; the client body never
// carries internal detail.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rv := recover(); rv != nil {
					if rv == http.ErrAbortHandler {
						panic(rv)
					}
					logger.Error("panic serving request",
						"panic", rv,
						"request_id", GetRequestID(r.Context()),
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, r, apperr.Internal())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
