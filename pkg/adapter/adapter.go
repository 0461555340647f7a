package adapter

import (
	"context"
)

// Adapter defines the interface for text-generation backends.
type Adapter interface {
	// Name returns the adapter's identifier.
	Name() string

	// Show probes a single model. A nil error means the model exists and can be served.
	Show(ctx context.Context, model string) error

	// List returns the backend's full model inventory.
	List(ctx context.Context) ([]string, error)

	// Generate runs a non-streaming completion. Failures are reported in the
	// Result rather than as an error.
	Generate(ctx context.Context, req Request) Result
}
