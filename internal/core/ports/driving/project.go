package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// ProjectService manages projects.
type ProjectService interface {
	// Create adds a new project and returns it with its generated ID.
	Create(ctx context.Context, name, description string) (*domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// List returns all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes a project with all its documents and chunks.
	Delete(ctx context.Context, id string) error
}
