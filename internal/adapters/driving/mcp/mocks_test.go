package mcp

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

var (
	_ driving.RAGService     = (*mockRAGService)(nil)
	_ driving.ProjectService = (*mockProjectService)(nil)
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	ingestReq   domain.IngestRequest
	retrieveReq domain.RetrieveRequest
	result      *domain.IngestResult
	matches     []domain.ChunkMatch
	documents   []domain.DocumentSummary
	document    *domain.Document
	err         error
}

func (m *mockRAGService) IngestDocument(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.ingestReq = req
	return m.result, m.err
}

func (m *mockRAGService) Retrieve(_ context.Context, req domain.RetrieveRequest) ([]domain.ChunkMatch, error) {
	m.retrieveReq = req
	return m.matches, m.err
}

func (m *mockRAGService) ListDocuments(_ context.Context, _ string) ([]domain.DocumentSummary, error) {
	return m.documents, m.err
}

func (m *mockRAGService) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockRAGService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	err      error
}

func (m *mockProjectService) Create(_ context.Context, name, description string) (*domain.Project, error) {
	return &domain.Project{ID: "p-new", Name: name, Description: description}, m.err
}

func (m *mockProjectService) Get(_ context.Context, _ string) (*domain.Project, error) {
	if len(m.projects) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.projects[0], m.err
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Delete(_ context.Context, _ string) error {
	return m.err
}
