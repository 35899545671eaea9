package handler

import (
	"net/http"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/usage"
)

// DebugHandler exposes in-process diagnostics. Every endpoint 404s outside
// dev mode so production deployments don't reveal that the routes exist.
type DebugHandler struct {
	rec *usage.Recorder
	dev bool
}

func NewDebugHandler(rec *usage.Recorder, dev bool) *DebugHandler {
	return &DebugHandler{rec: rec, dev: dev}
}

// Usage dumps the recorded per-request usage events.
func (h *DebugHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if !h.dev {
		writeError(w, r, apperr.NotFound("Not found"))
		return
	}
	events := h.rec.Events()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// Health mirrors the public liveness probe but reports the event count too,
// which is handy when tailing a dev instance.
func (h *DebugHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.dev {
		writeError(w, r, apperr.NotFound("Not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"event_count": len(h.rec.Events()),
	})
}
