package model

// JobStatus is the lifecycle state of an asynchronous OCR job. Transitions
// are one-directional: pending -> processing -> completed | failed.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// OCRJob is an asynchronous OCR job record. Result is present iff the job
// completed; Error is present iff it failed. RequestID is the correlation id
// of the request that submitted the job.
type OCRJob struct {
	JobID     string    `json:"job_id"`
	ProjectID string    `json:"project_id"`
	Status    JobStatus `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"request_id"`
}
