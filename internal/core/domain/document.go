package domain

import "time"

// Document is a piece of raw text ingested into a project.
// It is immutable once chunked; the only permitted change is deletion,
// which cascades to its chunks.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ProjectID links to the owning Project.
	ProjectID string

	// Name is the display name shown alongside retrieval results.
	Name string

	// Content is the full raw text before chunking.
	Content string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is an embedded slice of a document and the unit of retrieval.
// Ordinals of a document's chunks are contiguous from 0 in document order.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// ProjectID links to the Project owning the parent document.
	ProjectID string

	// Ordinal is the position within the document, starting at 0.
	Ordinal int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector produced by the embedding provider.
	// Written once and never mutated.
	Embedding []float32
}

// DocumentSummary is a document listing entry without its content.
type DocumentSummary struct {
	ID         string
	ProjectID  string
	Name       string
	CreatedAt  time.Time
	ChunkCount int
}
