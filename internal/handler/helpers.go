package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/server/middleware"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the flat contract error body {error_code, message,
// request_id} and records the code on the request info for the logging
// middleware. 401 responses carry the Bearer challenge.
func writeError(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	middleware.SetErrorCode(r.Context(), string(e.Code))
	if e.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, e.Status, model.ErrorResponse{
		ErrorCode: string(e.Code),
		Message:   e.Message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ProjectIDHeader optionally scopes a request to a project; when present it
// must agree with the path.
const ProjectIDHeader = "X-Project-Id"

// checkProjectScope enforces path/header project agreement. A missing header
// is fine; a disagreeing one is a 400.
func checkProjectScope(r *http.Request, projectID string) *apperr.Error {
	header := r.Header.Get(ProjectIDHeader)
	if header != "" && header != projectID {
		return apperr.ProjectMismatch()
	}
	if info := middleware.GetRequestInfo(r.Context()); info != nil {
		info.ProjectID = projectID
	}
	return nil
}
