package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/model"
)

// writeError emits the flat contract error body from middleware. 401
// responses additionally carry the Bearer challenge.
func writeError(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	SetErrorCode(r.Context(), string(e.Code))
	if e.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		ErrorCode: string(e.Code),
		Message:   e.Message,
		RequestID: GetRequestID(r.Context()),
	})
}
