// Package usage keeps an in-process log of request usage events, surfaced by
// the dev-only /debug/usage endpoint. The recorder is injected state, not a
// process global, so tests get isolated instances.
package usage

import "sync"

// Event is one request's usage record.
type Event struct {
	RequestID string `json:"request_id"`
	Route     string `json:"route"`
	Method    string `json:"method"`
	Status    string `json:"status"` // "success" or "error"
	ErrorCode string `json:"error_code,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Recorder accumulates events. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one event.
func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of all recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
