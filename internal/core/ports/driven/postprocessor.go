package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// PostProcessor turns a document into ordered chunks ready for embedding.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process splits a document into chunks with contiguous ordinals
	// starting at 0. Embeddings are left empty.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
