package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/job"
	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/payload"
	"github.com/fieldscript/fieldscript/internal/server/middleware"
)

// OCRHandler serves OCR submission, job polling, dry-run probing, and the
// export placeholder.
type OCRHandler struct {
	jobs *job.Manager
	dev  bool
}

func NewOCRHandler(jobs *job.Manager, dev bool) *OCRHandler {
	return &OCRHandler{jobs: jobs, dev: dev}
}

// Submit accepts an OCR request and queues it. The payload guard runs before
// any job is created; the response is 202 with the job id and the caller
// polls for the outcome.
func (h *OCRHandler) Submit(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if e := checkProjectScope(r, projectID); e != nil {
		writeError(w, r, e)
		return
	}

	var req model.OCRRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, apperr.Validation())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation())
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	jobID, err := h.jobs.Submit(r.Context(), projectID, req, requestID)
	if err != nil {
		switch {
		case errors.Is(err, payload.ErrImageTooLarge), errors.Is(err, payload.ErrTotalTooLarge):
			writeError(w, r, apperr.PayloadTooLarge(err.Error()))
		default:
			writeError(w, r, apperr.Internal())
		}
		return
	}

	writeJSON(w, http.StatusAccepted, model.JobAccepted{
		JobID:     jobID,
		Status:    model.JobPending,
		RequestID: requestID,
	})
}

// GetJob polls a job's status. A job id belonging to another project is
// indistinguishable from an unknown one.
func (h *OCRHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	jobID := chi.URLParam(r, "jobID")
	if info := middleware.GetRequestInfo(r.Context()); info != nil {
		info.ProjectID = projectID
	}

	j, ok := h.jobs.Get(projectID, jobID)
	if !ok {
		writeError(w, r, apperr.NotFound("Job not found"))
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// DryRun reports the request fingerprint and whether an identical request
// was processed before, without doing OCR work. Dev-mode only; hidden in
// production.
func (h *OCRHandler) DryRun(w http.ResponseWriter, r *http.Request) {
	if !h.dev {
		writeError(w, r, apperr.NotFound("Not found"))
		return
	}
	projectID := chi.URLParam(r, "projectID")
	if e := checkProjectScope(r, projectID); e != nil {
		writeError(w, r, e)
		return
	}

	var req model.OCRRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, apperr.Validation())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, apperr.Validation())
		return
	}

	hash, hit := h.jobs.DryRun(req)
	writeJSON(w, http.StatusOK, model.DryRunResponse{
		RequestID:   middleware.GetRequestID(r.Context()),
		RequestHash: hash,
		CacheHit:    hit,
	})
}

// Export is a placeholder pending the real export pipeline.
func (h *OCRHandler) Export(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if info := middleware.GetRequestInfo(r.Context()); info != nil {
		info.ProjectID = projectID
	}
	writeJSON(w, http.StatusOK, model.ExportResponse{
		Result:    "Export placeholder",
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
