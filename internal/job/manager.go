// Package job owns the asynchronous OCR job lifecycle: a single-process job
// table, the pending -> processing -> completed|failed state machine, and
// the detached workers that drive it.
package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/ocr"
	"github.com/fieldscript/fieldscript/internal/payload"
)

// Manager coordinates OCR jobs. All state is instance-owned and injected
// into handlers; there are no package globals. Each job is mutated by
// exactly one worker goroutine; reads may happen concurrently and only ever
// observe valid states in order.
type Manager struct {
	engine      ocr.Engine
	logger      *slog.Logger
	perImageCap int
	totalCap    int

	mu      sync.Mutex
	jobs    map[string]*model.OCRJob
	results map[string]string // fingerprint -> text, for dry-run probing

	// onTerminal, when set, is called after a job reaches a terminal state.
	// Tests use it to wait for workers without polling.
	onTerminal func(jobID string)
}

// NewManager creates a Manager with the default payload caps.
func NewManager(engine ocr.Engine, logger *slog.Logger) *Manager {
	return &Manager{
		engine:      engine,
		logger:      logger,
		perImageCap: payload.DefaultPerImageCap,
		totalCap:    payload.DefaultTotalCap,
		jobs:        make(map[string]*model.OCRJob),
		results:     make(map[string]string),
	}
}

// SetCaps overrides the payload limits, mainly for tests.
func (m *Manager) SetCaps(perImage, total int) {
	m.perImageCap = perImage
	m.totalCap = total
}

// Submit validates the payload, records a pending job, and schedules its
// execution on a detached goroutine. It returns as soon as the job is
// queued; the caller is never blocked on OCR completion. No job record is
// created when the payload is rejected.
func (m *Manager) Submit(ctx context.Context, projectID string, req model.OCRRequest, requestID string) (string, error) {
	if err := payload.Enforce(req.Images, m.perImageCap, m.totalCap); err != nil {
		return "", err
	}

	j := &model.OCRJob{
		JobID:     uuid.NewString(),
		ProjectID: projectID,
		Status:    model.JobPending,
		RequestID: requestID,
	}
	m.mu.Lock()
	m.jobs[j.JobID] = j
	m.mu.Unlock()

	go m.run(j.JobID, req)
	return j.JobID, nil
}

// Get returns a snapshot of a job. Cross-project job ids are
// indistinguishable from nonexistent ones.
func (m *Manager) Get(projectID, jobID string) (model.OCRJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.ProjectID != projectID {
		return model.OCRJob{}, false
	}
	return *j, true
}

// Fingerprint computes the deterministic request hash: SHA-256 over the
// compact JSON of the normalized image list and document type, keys sorted.
func Fingerprint(req model.OCRRequest) string {
	norm := struct {
		DocumentType *string  `json:"document_type"`
		Images       []string `json:"images"`
	}{Images: req.Images}
	if req.DocumentType != "" {
		norm.DocumentType = &req.DocumentType
	}
	// Marshal of this struct cannot fail.
	b, _ := json.Marshal(norm)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DryRun reports the request fingerprint and whether that fingerprint has a
// recorded result, without performing any OCR work.
func (m *Manager) DryRun(req model.OCRRequest) (string, bool) {
	fp := Fingerprint(req)
	m.mu.Lock()
	_, hit := m.results[fp]
	m.mu.Unlock()
	return fp, hit
}

// run executes one job to a terminal state. Failures of any kind, engine
// errors and panics alike, are captured on the job record; the caller was
// already acknowledged with 202 and nothing here may surface as a process
// fault.
func (m *Manager) run(jobID string, req model.OCRRequest) {
	m.transition(jobID, model.JobProcessing, "", "")

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("ocr worker panic", "job_id", jobID, "panic", r)
			m.transition(jobID, model.JobFailed, "", fmt.Sprintf("ocr engine panic: %v", r))
		}
	}()

	fp := Fingerprint(req)
	m.mu.Lock()
	cached, hit := m.results[fp]
	m.mu.Unlock()
	if hit {
		m.transition(jobID, model.JobCompleted, cached, "")
		return
	}

	text, err := m.engine.Run(context.Background(), req.Images, req.DocumentType)
	if err != nil {
		m.logger.Warn("ocr job failed", "job_id", jobID, "error", err)
		m.transition(jobID, model.JobFailed, "", err.Error())
		return
	}

	m.mu.Lock()
	m.results[fp] = text
	m.mu.Unlock()
	m.transition(jobID, model.JobCompleted, text, "")
}

// transition applies a state change, enforcing one-directional ordering: a
// terminal job is never mutated again.
func (m *Manager) transition(jobID string, status model.JobStatus, result, errMsg string) {
	m.mu.Lock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	j.Status = status
	j.Result = result
	j.Error = errMsg
	m.mu.Unlock()

	if status.Terminal() && m.onTerminal != nil {
		m.onTerminal(jobID)
	}
}
