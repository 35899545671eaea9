// Package version pins the service identity and the processing-pipeline
// version labels reported by GET /version.
package version

const (
	Service = "fieldscript-api"
	Version = "1.0.0"

	// Pipeline version labels. The prompt label changes whenever the OCR
	// prompt text changes, so cached fingerprints stay comparable.
	Prompt   = "ocr_v1_2026-02-11"
	Export   = "export_v1"
	Template = "template_v1"
)
