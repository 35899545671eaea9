package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fieldscript/fieldscript/internal/job"
	"github.com/fieldscript/fieldscript/internal/keycrypto"
	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/ocr"
	"github.com/fieldscript/fieldscript/internal/server/middleware"
	"github.com/fieldscript/fieldscript/internal/store"
)

func newKeyRig(t *testing.T) (*chi.Mux, *store.MemoryStore) {
	t.Helper()
	hasher, err := keycrypto.New("", true)
	if err != nil {
		t.Fatalf("keycrypto.New: %v", err)
	}
	keys := store.NewMemoryStore(hasher)
	h := NewAPIKeyHandler(keys)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Post("/api/projects/{projectID}/api-keys", h.Create)
	r.Post("/api/projects/{projectID}/api-keys/{keyID}/revoke", h.Revoke)
	return r, keys
}

func TestAPIKeyCreate_EmptyBody(t *testing.T) {
	r, _ := newKeyRig(t)

	// No body at all is fine; the name is simply empty.
	req := httptest.NewRequest("POST", "/api/projects/p1/api-keys", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rr.Code, rr.Body.String())
	}
	var resp model.APIKeyCreateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.APIKey == "" {
		t.Error("empty api_key")
	}
	if resp.Name != "" {
		t.Errorf("name = %q, want empty", resp.Name)
	}
}

func TestAPIKeyCreate_MalformedBody(t *testing.T) {
	r, _ := newKeyRig(t)

	req := httptest.NewRequest("POST", "/api/projects/p1/api-keys", bytes.NewBufferString("{oops"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestAPIKeyRevoke_NotFoundMessage(t *testing.T) {
	r, _ := newKeyRig(t)

	req := httptest.NewRequest("POST", "/api/projects/p1/api-keys/missing/revoke", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var resp model.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "API key not found" {
		t.Errorf("message = %q", resp.Message)
	}
}

func newOCRRig(t *testing.T, dev bool) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := ocr.EngineFunc(func(ctx context.Context, images []string, documentType string) (string, error) {
		return "text", nil
	})
	jobs := job.NewManager(engine, logger)
	h := NewOCRHandler(jobs, dev)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Post("/v1/projects/{projectID}/ocr", h.Submit)
	r.Get("/v1/projects/{projectID}/jobs/{jobID}", h.GetJob)
	return r
}

func TestGetJob_NotFoundMessage(t *testing.T) {
	r := newOCRRig(t, false)

	req := httptest.NewRequest("GET", "/v1/projects/p1/jobs/nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var resp model.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Job not found" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.ErrorCode != "NOT_FOUND" {
		t.Errorf("error_code = %q", resp.ErrorCode)
	}
}

func TestCheckProjectScope(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		path    string
		wantErr bool
	}{
		{"no header", "", "p1", false},
		{"matching header", "p1", "p1", false},
		{"mismatched header", "p2", "p1", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			if tc.header != "" {
				req.Header.Set(ProjectIDHeader, tc.header)
			}
			e := checkProjectScope(req, tc.path)
			if tc.wantErr && e == nil {
				t.Error("expected mismatch error, got nil")
			}
			if !tc.wantErr && e != nil {
				t.Errorf("unexpected error: %v", e)
			}
			if tc.wantErr && e.Status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", e.Status)
			}
		})
	}
}
