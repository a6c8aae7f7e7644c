package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// ChunkStore persists documents, their chunks and chunk embeddings.
//
// Errors wrap domain.ErrNotFound, domain.ErrConstraintViolation or
// domain.ErrStorageUnavailable.
type ChunkStore interface {
	// PutDocument stores a document. The ID is assigned by the caller.
	PutDocument(ctx context.Context, doc *domain.Document) error

	// PutChunks stores the complete chunk set of a document in a single
	// atomic unit, replacing any previous chunks. Readers see either all of
	// the chunks or none of them. Fails with domain.ErrDimensionMismatch when
	// the vectors disagree with each other or with the project's existing chunks.
	PutChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// PutDocumentWithChunks stores a new document together with its complete
	// chunk set in one atomic unit. Readers never see the document without
	// its chunks, and on failure nothing is stored. Chunk validation is the
	// same as PutChunks.
	PutDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetAllChunkVectors returns every chunk vector of a project, ordered by
	// document creation time and ordinal.
	GetAllChunkVectors(ctx context.Context, projectID string) ([]domain.ChunkVector, error)

	// HydrateChunks returns chunk text and document names for the given ids,
	// in the order the ids were given. Ids whose chunks no longer exist, for
	// example because their document was deleted after the vectors were
	// loaded, are skipped. Scores are left at zero.
	HydrateChunks(ctx context.Context, chunkIDs []string) ([]domain.ChunkMatch, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments returns summaries of a project's documents, newest first.
	ListDocuments(ctx context.Context, projectID string) ([]domain.DocumentSummary, error)

	// DeleteDocument removes a document and all its chunks.
	DeleteDocument(ctx context.Context, documentID string) error
}

// ProjectStore persists projects. Deleting a project cascades to its
// documents and chunks.
type ProjectStore interface {
	// CreateProject stores a new project.
	CreateProject(ctx context.Context, project *domain.Project) error

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// ListProjects returns all projects ordered by name.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// DeleteProject removes a project and everything it owns.
	DeleteProject(ctx context.Context, id string) error
}
