package middleware

import "net/http"

// SecurityHeaders injects static security headers on every response, leaving
// any value a handler already set untouched.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&secHeaderWriter{ResponseWriter: w}, r)
	})
}

type secHeaderWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *secHeaderWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	h := w.Header()
	if h.Get("X-Content-Type-Options") == "" {
		h.Set("X-Content-Type-Options", "nosniff")
	}
	if h.Get("Referrer-Policy") == "" {
		h.Set("Referrer-Policy", "no-referrer")
	}
	if h.Get("X-Frame-Options") == "" {
		h.Set("X-Frame-Options", "DENY")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *secHeaderWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *secHeaderWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
