package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

// requestInfoKey is the context key for the per-request info holder.
const requestInfoKey contextKey = "request_info"

// RequestIDHeader is the correlation id header, inbound and outbound.
const RequestIDHeader = "X-Request-Id"

// RequestInfo is the mutable per-request state threaded through the context:
// the correlation id plus fields later middleware and handlers fill in for
// logging. It is written only from the request's own goroutine.
type RequestInfo struct {
	ID        string
	ErrorCode string
	ProjectID string
}

// RequestID assigns each request a correlation id. An inbound X-Request-Id
// value is used after trimming whitespace if non-empty (any opaque string is
// accepted); otherwise a fresh UUIDv7 is generated. The id is echoed on the
// response exactly once, overriding any value a downstream handler set.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}

		info := &RequestInfo{ID: id}
		ctx := context.WithValue(r.Context(), requestInfoKey, info)
		next.ServeHTTP(&idWriter{ResponseWriter: w, id: id}, r.WithContext(ctx))
	})
}

// GetRequestID extracts the correlation id from the context. Returns an
// empty string if no id is present.
func GetRequestID(ctx context.Context) string {
	if info := GetRequestInfo(ctx); info != nil {
		return info.ID
	}
	return ""
}

// GetRequestInfo returns the per-request info holder, or nil outside a
// request handled by RequestID.
func GetRequestInfo(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(*RequestInfo)
	return info
}

// SetErrorCode records the error code a handler responded with, for the
// logging and usage middleware.
func SetErrorCode(ctx context.Context, code string) {
	if info := GetRequestInfo(ctx); info != nil {
		info.ErrorCode = code
	}
}

// idWriter forces the correlation id header at write time so a duplicate set
// by a downstream handler cannot win.
type idWriter struct {
	http.ResponseWriter
	id          string
	wroteHeader bool
}

func (w *idWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.Header().Set(RequestIDHeader, w.id)
	w.ResponseWriter.WriteHeader(code)
}

func (w *idWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter, required for http.Flusher
// and other interface assertions through middleware chains.
func (w *idWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
