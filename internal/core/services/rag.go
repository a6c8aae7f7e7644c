package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/embedding"
	"github.com/custodia-labs/ragkit/internal/logger"
	"github.com/custodia-labs/ragkit/internal/postprocessors/chunker"
	"github.com/custodia-labs/ragkit/internal/ranking"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// RAGService ingests documents and answers similarity queries.
type RAGService struct {
	projects driven.ProjectStore
	chunks   driven.ChunkStore
	resolver driven.ProviderResolver
	splitter driven.PostProcessor
	embedder *embedding.Client
	ranker   *ranking.Ranker
	settings domain.RAGSettings
	now      func() time.Time
}

// RAGOption configures a RAGService.
type RAGOption func(*RAGService)

// WithPostProcessor replaces the chunker built from settings.
func WithPostProcessor(p driven.PostProcessor) RAGOption {
	return func(s *RAGService) { s.splitter = p }
}

// WithEmbeddingClient replaces the embedding client built from settings.
func WithEmbeddingClient(c *embedding.Client) RAGOption {
	return func(s *RAGService) { s.embedder = c }
}

// WithRanker replaces the default ranker.
func WithRanker(r *ranking.Ranker) RAGOption {
	return func(s *RAGService) { s.ranker = r }
}

// WithClock sets the time source for document timestamps.
func WithClock(now func() time.Time) RAGOption {
	return func(s *RAGService) { s.now = now }
}

// NewRAGService creates a RAG service. The chunker and embedding client are
// derived from settings unless replaced by options.
func NewRAGService(
	projects driven.ProjectStore,
	chunks driven.ChunkStore,
	resolver driven.ProviderResolver,
	settings domain.RAGSettings,
	opts ...RAGOption,
) (*RAGService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &RAGService{
		projects: projects,
		chunks:   chunks,
		resolver: resolver,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.splitter == nil {
		p, err := chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		)
		if err != nil {
			return nil, err
		}
		s.splitter = p
	}
	if s.embedder == nil {
		c, err := embedding.NewClient(embedding.ConfigFromSettings(settings))
		if err != nil {
			return nil, err
		}
		s.embedder = c
	}
	if s.ranker == nil {
		s.ranker = ranking.New()
	}

	return s, nil
}

// IngestDocument chunks, embeds and stores a document.
func (s *RAGService) IngestDocument(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingest")

	name := strings.TrimSpace(req.Name)
	if err := validateInput(ingestInput{
		ProjectID:  req.ProjectID,
		Name:       name,
		ProviderID: req.ProviderID,
	}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: document text is empty", domain.ErrInvalidInput)
	}
	if len(req.Text) > s.settings.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: document is %d bytes, limit is %d",
			domain.ErrInvalidInput, len(req.Text), s.settings.MaxDocumentBytes)
	}

	if _, err := s.projects.GetProject(ctx, req.ProjectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	provider, err := s.resolver.Resolve(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		ProjectID: req.ProjectID,
		Name:      name,
		Content:   req.Text,
		CreatedAt: s.now().UTC(),
	}

	chunks, err := s.splitter.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Document %q: %d chunks via %s", name, len(chunks), s.splitter.Name())

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	start := time.Now()
	vectors, err := s.embedder.EmbedBatch(ctx, provider, texts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Embedded %d chunks with %s in %s", len(vectors), provider.ModelName(), time.Since(start))

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := s.chunks.PutDocumentWithChunks(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	logger.Info("Ingested %q into project %s (%d chunks)", name, req.ProjectID, len(chunks))
	return &domain.IngestResult{DocumentID: doc.ID, ChunkCount: len(chunks)}, nil
}

// Retrieve returns the top-k chunks of a project most similar to the query.
func (s *RAGService) Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.ChunkMatch, error) {
	logger.Section("Retrieve")

	topK := req.TopK
	if topK == 0 {
		topK = s.settings.DefaultTopK
	}
	query := strings.TrimSpace(req.Query)
	if err := validateInput(retrieveInput{
		ProjectID:  req.ProjectID,
		Query:      query,
		ProviderID: req.ProviderID,
		TopK:       topK,
		Diversity:  req.Diversity,
	}); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetProject(ctx, req.ProjectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	provider, err := s.resolver.Resolve(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	queryVec, err := s.embedder.EmbedOne(ctx, provider, query)
	if err != nil {
		return nil, err
	}

	candidates, err := s.chunks.GetAllChunkVectors(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load chunk vectors: %w", err)
	}
	if len(candidates) == 0 {
		logger.Debug("Project %s has no chunks", req.ProjectID)
		return []domain.ChunkMatch{}, nil
	}

	ranked, err := s.rank(queryVec, candidates, topK, req.Diversity)
	if err != nil {
		return nil, err
	}
	logger.Debug("Ranked %d candidates, keeping %d", len(candidates), len(ranked))

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ChunkID
	}

	// A document deleted since the vectors were loaded drops out here.
	matches, err := s.chunks.HydrateChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}
	if len(matches) < len(ranked) {
		logger.Debug("%d ranked chunks no longer exist", len(ranked)-len(matches))
	}

	scores := make(map[string]float64, len(ranked))
	for _, r := range ranked {
		scores[r.ChunkID] = r.Score
	}
	for i := range matches {
		matches[i].Score = scores[matches[i].Chunk.ID]
	}
	return matches, nil
}

// rank scores candidates and, when diversity is set, over-fetches and
// reranks to push near-duplicates down.
func (s *RAGService) rank(
	query []float32, candidates []domain.ChunkVector, topK int, diversity float64,
) ([]domain.ScoredChunk, error) {
	if diversity <= 0 {
		return s.ranker.Rank(query, candidates, topK)
	}

	pool, err := s.ranker.Rank(query, candidates, topK*ranking.DefaultCandidateMultiplier)
	if err != nil {
		return nil, err
	}

	inPool := make(map[string]bool, len(pool))
	for _, p := range pool {
		inPool[p.ChunkID] = true
	}
	vectors := make(map[string][]float32, len(pool))
	for _, c := range candidates {
		if inPool[c.ChunkID] {
			vectors[c.ChunkID] = c.Vector
		}
	}

	return ranking.Diversify(pool, vectors, topK, diversity), nil
}

// ListDocuments returns the documents of a project, newest first.
func (s *RAGService) ListDocuments(ctx context.Context, projectID string) ([]domain.DocumentSummary, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return s.chunks.ListDocuments(ctx, projectID)
}

// GetDocument retrieves a document by ID.
func (s *RAGService) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.chunks.GetDocument(ctx, documentID)
}

// DeleteDocument removes a document and its chunks.
func (s *RAGService) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.chunks.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	logger.Debug("Deleted document %s", documentID)
	return nil
}
