package model

import "errors"

// MaxImagesPerRequest caps the number of images in a single OCR request.
const MaxImagesPerRequest = 10

// OCRRequest is the body of an OCR submission. Images are base64-encoded
// strings, optionally carrying a data: URL prefix. Size limits are NOT
// enforced here; the payload guard sizes images without decoding them.
type OCRRequest struct {
	Images       []string          `json:"images"`
	DocumentType string            `json:"document_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Validate checks structural constraints only: at least one image, at most
// MaxImagesPerRequest, none empty.
func (r *OCRRequest) Validate() error {
	if len(r.Images) == 0 {
		return errors.New("images must contain at least one image")
	}
	if len(r.Images) > MaxImagesPerRequest {
		return errors.New("images cannot contain more than 10 images")
	}
	for _, img := range r.Images {
		if img == "" {
			return errors.New("each image must be a non-empty base64 string")
		}
	}
	return nil
}

// OCRResponse is the result of a completed OCR run.
type OCRResponse struct {
	Text      string `json:"text"`
	RequestID string `json:"request_id"`
}

// JobAccepted is the 202 body returned when an OCR job is queued.
type JobAccepted struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	RequestID string    `json:"request_id"`
}

// DryRunResponse reports the deterministic fingerprint of an OCR request and
// whether that fingerprint has been processed before, without doing new work.
type DryRunResponse struct {
	RequestID   string `json:"request_id"`
	RequestHash string `json:"request_hash"`
	CacheHit    bool   `json:"cache_hit"`
}

// ExportRequest and ExportResponse cover the export endpoint, which is a
// placeholder in this release.
type ExportRequest struct {
	JobID  string `json:"job_id,omitempty"`
	Format string `json:"format,omitempty"`
}

type ExportResponse struct {
	Result    string `json:"result"`
	RequestID string `json:"request_id"`
}
