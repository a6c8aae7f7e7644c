package domain

// ChunkVector is a chunk id paired with its embedding, the input to ranking.
type ChunkVector struct {
	ChunkID string
	Vector  []float32
}

// ScoredChunk is a ranking result before hydration.
type ScoredChunk struct {
	ChunkID string
	Score   float64
}

// ChunkMatch is a hydrated retrieval result. It is built fresh for every
// query and never persisted.
type ChunkMatch struct {
	// Chunk is the matched chunk. Its Embedding is not populated.
	Chunk Chunk

	// DocumentName is the display name of the owning document.
	DocumentName string

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float64
}

// IngestRequest describes a document to ingest.
type IngestRequest struct {
	ProjectID  string
	Name       string
	Text       string
	ProviderID string
}

// IngestResult reports the outcome of a successful ingestion.
type IngestResult struct {
	DocumentID string
	ChunkCount int
}

// RetrieveRequest describes a similarity query against a project.
type RetrieveRequest struct {
	ProjectID  string
	Query      string
	ProviderID string

	// TopK is the number of matches to return. Zero means the configured default.
	TopK int

	// Diversity enables reranking that penalises near-duplicate matches.
	// Zero disables it; the usual value is 0.3.
	Diversity float64
}
