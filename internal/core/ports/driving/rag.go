package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// RAGService ingests documents into projects and retrieves ranked chunks.
type RAGService interface {
	// IngestDocument chunks, embeds and stores a document. Nothing is
	// persisted unless every chunk was embedded and written.
	IngestDocument(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// Retrieve returns the chunks of a project most similar to the query.
	// An empty project yields an empty slice and no error.
	Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.ChunkMatch, error)

	// ListDocuments returns the documents of a project.
	ListDocuments(ctx context.Context, projectID string) ([]domain.DocumentSummary, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, documentID string) error
}
