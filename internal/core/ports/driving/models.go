package driving

import (
	"context"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// ModelService exposes the generation model catalogue.
type ModelService interface {
	// List returns configured models merged with the models the backend has.
	List(ctx context.Context) ([]domain.ModelInfo, error)

	// Pull downloads a model through the backend.
	Pull(ctx context.Context, name string) error

	// Default returns the default generation model.
	Default() string
}

// HealthService reports backend reachability.
type HealthService interface {
	// Check pings the backends and summarises index readiness.
	Check(ctx context.Context) domain.Health
}
