// Package memory provides in-memory implementations of the storage ports
// for tests and ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore   = (*Store)(nil)
	_ driven.ProjectStore = (*Store)(nil)
)

// Store is an in-memory implementation of driven.ChunkStore and
// driven.ProjectStore. A single lock guards all maps, so PutChunks and
// PutDocumentWithChunks are atomic with respect to readers.
type Store struct {
	mu        sync.RWMutex
	projects  map[string]domain.Project
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk // by document ID, in ordinal order
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		projects:  make(map[string]domain.Project),
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// PutDocument stores a document. The owning project must exist.
func (s *Store) PutDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putDocument(doc)
}

// PutChunks replaces the chunk set of a document.
func (s *Store) PutChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	stored, err := s.prepareChunks(doc, chunks)
	if err != nil {
		return err
	}
	s.chunks[documentID] = stored
	return nil
}

// PutDocumentWithChunks stores a document and its chunks under one lock.
// Nothing is stored if either fails validation.
func (s *Store) PutDocumentWithChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.prepareChunks(*doc, chunks)
	if err != nil {
		return err
	}
	if err := s.putDocument(doc); err != nil {
		return err
	}
	s.chunks[doc.ID] = stored
	return nil
}

// putDocument inserts doc (caller must hold lock).
func (s *Store) putDocument(doc *domain.Document) error {
	if _, ok := s.projects[doc.ProjectID]; !ok {
		return fmt.Errorf("%w: project %s does not exist", domain.ErrConstraintViolation, doc.ProjectID)
	}
	if _, ok := s.documents[doc.ID]; ok {
		return fmt.Errorf("%w: document %s already exists", domain.ErrConstraintViolation, doc.ID)
	}
	s.documents[doc.ID] = *doc
	return nil
}

// prepareChunks validates chunks for doc and returns owned copies
// (caller must hold lock).
func (s *Store) prepareChunks(doc domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	dim := 0
	for i, c := range chunks {
		switch {
		case c.Ordinal != i:
			return nil, fmt.Errorf("%w: chunk %d has ordinal %d", domain.ErrConstraintViolation, i, c.Ordinal)
		case len(c.Embedding) == 0:
			return nil, fmt.Errorf("%w: chunk %d has no embedding", domain.ErrConstraintViolation, i)
		case i == 0:
			dim = len(c.Embedding)
		case len(c.Embedding) != dim:
			return nil, fmt.Errorf("%w: chunk %d has dimension %d, expected %d",
				domain.ErrDimensionMismatch, i, len(c.Embedding), dim)
		}
	}

	if dim > 0 {
		if existing := s.projectDimension(doc.ProjectID, doc.ID); existing > 0 && existing != dim {
			return nil, fmt.Errorf("%w: project %s stores %d-dimensional vectors, got %d",
				domain.ErrDimensionMismatch, doc.ProjectID, existing, dim)
		}
	}

	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.DocumentID = doc.ID
		c.ProjectID = doc.ProjectID
		c.Embedding = append([]float32(nil), c.Embedding...)
		stored[i] = c
	}
	return stored, nil
}

// projectDimension returns the vector dimension used by a project's other
// documents, or 0 if none (caller must hold lock).
func (s *Store) projectDimension(projectID, excludeDocID string) int {
	for docID, chunks := range s.chunks {
		if docID == excludeDocID || len(chunks) == 0 {
			continue
		}
		if chunks[0].ProjectID == projectID {
			return len(chunks[0].Embedding)
		}
	}
	return 0
}

// GetAllChunkVectors returns every chunk vector of a project.
func (s *Store) GetAllChunkVectors(_ context.Context, projectID string) ([]domain.ChunkVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vectors []domain.ChunkVector
	for _, doc := range s.sortedDocuments(projectID, false) {
		for _, c := range s.chunks[doc.ID] {
			vectors = append(vectors, domain.ChunkVector{ChunkID: c.ID, Vector: c.Embedding})
		}
	}
	return vectors, nil
}

// HydrateChunks returns chunk records with document names, in the order of
// chunkIDs. Ids that no longer exist are skipped.
func (s *Store) HydrateChunks(_ context.Context, chunkIDs []string) ([]domain.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		wanted[id] = true
	}

	found := make(map[string]domain.ChunkMatch, len(chunkIDs))
	for docID, chunks := range s.chunks {
		for _, c := range chunks {
			if wanted[c.ID] {
				c.Embedding = nil
				found[c.ID] = domain.ChunkMatch{Chunk: c, DocumentName: s.documents[docID].Name}
			}
		}
	}

	matches := make([]domain.ChunkMatch, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if m, ok := found[id]; ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, documentID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return &doc, nil
}

// ListDocuments returns document summaries for a project, newest first.
func (s *Store) ListDocuments(_ context.Context, projectID string) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.sortedDocuments(projectID, true)
	summaries := make([]domain.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, domain.DocumentSummary{
			ID:         d.ID,
			ProjectID:  d.ProjectID,
			Name:       d.Name,
			CreatedAt:  d.CreatedAt,
			ChunkCount: len(s.chunks[d.ID]),
		})
	}
	return summaries, nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	delete(s.documents, documentID)
	delete(s.chunks, documentID)
	return nil
}

// sortedDocuments returns a project's documents by creation time (caller must hold lock).
func (s *Store) sortedDocuments(projectID string, newestFirst bool) []domain.Document {
	var docs []domain.Document
	for _, d := range s.documents {
		if d.ProjectID == projectID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			if newestFirst {
				return docs[i].CreatedAt.After(docs[j].CreatedAt)
			}
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}
