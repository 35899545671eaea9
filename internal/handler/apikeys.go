package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/store"
)

// APIKeyHandler serves project API key management: create, list, revoke.
// Authentication and project scoping happen in middleware before any of
// these run.
type APIKeyHandler struct {
	keys store.APIKeyStore
}

func NewAPIKeyHandler(keys store.APIKeyStore) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// Create mints a new key for the path project. The response is the only
// place the raw secret ever appears.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req model.APIKeyCreateRequest
	if err := readJSON(r, &req); err != nil && err != io.EOF {
		writeError(w, r, apperr.Validation())
		return
	}

	raw, rec, err := h.keys.Create(r.Context(), projectID, req.Name)
	if err != nil {
		writeError(w, r, apperr.Internal())
		return
	}
	writeJSON(w, http.StatusOK, model.APIKeyCreateResponse{
		APIKey:    raw,
		APIKeyID:  rec.ID,
		KeyPrefix: rec.KeyPrefix,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
	})
}

// List returns the project's keys, newest first, without hashes or secrets.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	keys, err := h.keys.List(r.Context(), projectID)
	if err != nil {
		writeError(w, r, apperr.Internal())
		return
	}
	if keys == nil {
		keys = []model.APIKey{}
	}
	writeJSON(w, http.StatusOK, model.APIKeyListResponse{Items: keys})
}

// Revoke sets the key's revocation timestamp. Re-revoking returns the
// original timestamp; unknown and cross-project ids are both 404.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	keyID := chi.URLParam(r, "keyID")

	rec, err := h.keys.Revoke(r.Context(), projectID, keyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, apperr.NotFound("API key not found"))
		} else {
			writeError(w, r, apperr.Internal())
		}
		return
	}
	writeJSON(w, http.StatusOK, model.APIKeyRevokeResponse{
		APIKeyID:  rec.ID,
		RevokedAt: *rec.RevokedAt,
	})
}
