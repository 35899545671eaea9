package handler

import (
	"net/http"

	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/version"
)

// Health is the liveness probe. No auth, no rate state inspection.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Version reports the service identity and pipeline version labels.
func Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.VersionResponse{
		Service:         version.Service,
		Version:         version.Version,
		PromptVersion:   version.Prompt,
		ExportVersion:   version.Export,
		TemplateVersion: version.Template,
	})
}
