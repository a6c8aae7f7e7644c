package metrics

import (
	"context"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure InstrumentedChunkStore implements the interface.
var _ driven.ChunkStore = (*InstrumentedChunkStore)(nil)

// InstrumentedChunkStore records metrics for every ChunkStore operation.
type InstrumentedChunkStore struct {
	next driven.ChunkStore
	m    *Metrics
}

// WrapChunkStore instruments s.
func WrapChunkStore(m *Metrics, s driven.ChunkStore) *InstrumentedChunkStore {
	return &InstrumentedChunkStore{next: s, m: m}
}

func (s *InstrumentedChunkStore) observe(op string, start time.Time, err error) {
	s.m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.m.StoreOps.WithLabelValues(op, status(err)).Inc()
}

// PutDocument records and delegates.
func (s *InstrumentedChunkStore) PutDocument(ctx context.Context, doc *domain.Document) error {
	start := time.Now()
	err := s.next.PutDocument(ctx, doc)
	s.observe("put_document", start, err)
	return err
}

// PutChunks records and delegates.
func (s *InstrumentedChunkStore) PutChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	start := time.Now()
	err := s.next.PutChunks(ctx, documentID, chunks)
	s.observe("put_chunks", start, err)
	if err == nil {
		s.m.StoredChunks.Add(float64(len(chunks)))
	}
	return err
}

// PutDocumentWithChunks records and delegates.
func (s *InstrumentedChunkStore) PutDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	start := time.Now()
	err := s.next.PutDocumentWithChunks(ctx, doc, chunks)
	s.observe("put_document_with_chunks", start, err)
	if err == nil {
		s.m.StoredChunks.Add(float64(len(chunks)))
	}
	return err
}

// GetAllChunkVectors records and delegates.
func (s *InstrumentedChunkStore) GetAllChunkVectors(ctx context.Context, projectID string) ([]domain.ChunkVector, error) {
	start := time.Now()
	vectors, err := s.next.GetAllChunkVectors(ctx, projectID)
	s.observe("get_all_chunk_vectors", start, err)
	return vectors, err
}

// HydrateChunks records and delegates.
func (s *InstrumentedChunkStore) HydrateChunks(ctx context.Context, chunkIDs []string) ([]domain.ChunkMatch, error) {
	start := time.Now()
	matches, err := s.next.HydrateChunks(ctx, chunkIDs)
	s.observe("hydrate_chunks", start, err)
	return matches, err
}

// GetDocument records and delegates.
func (s *InstrumentedChunkStore) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	start := time.Now()
	doc, err := s.next.GetDocument(ctx, documentID)
	s.observe("get_document", start, err)
	return doc, err
}

// ListDocuments records and delegates.
func (s *InstrumentedChunkStore) ListDocuments(ctx context.Context, projectID string) ([]domain.DocumentSummary, error) {
	start := time.Now()
	docs, err := s.next.ListDocuments(ctx, projectID)
	s.observe("list_documents", start, err)
	return docs, err
}

// DeleteDocument records and delegates.
func (s *InstrumentedChunkStore) DeleteDocument(ctx context.Context, documentID string) error {
	start := time.Now()
	err := s.next.DeleteDocument(ctx, documentID)
	s.observe("delete_document", start, err)
	return err
}
