// Package ocr defines the pluggable OCR capability consumed by the job
// manager. The engine itself is an external collaborator; this package ships
// only the contract and a stub.
package ocr

import "context"

// Engine runs OCR over a batch of base64-encoded images and returns the
// extracted text. Implementations may take significant wall-clock time and
// must honor ctx.
type Engine interface {
	Run(ctx context.Context, images []string, documentType string) (string, error)
}

// StubEngine is the placeholder engine used until a real backend is wired.
type StubEngine struct{}

func (StubEngine) Run(ctx context.Context, images []string, documentType string) (string, error) {
	return "OCR engine not yet implemented", nil
}

// EngineFunc adapts a function to the Engine interface, mainly for tests.
type EngineFunc func(ctx context.Context, images []string, documentType string) (string, error)

func (f EngineFunc) Run(ctx context.Context, images []string, documentType string) (string, error) {
	return f(ctx, images, documentType)
}
