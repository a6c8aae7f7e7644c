package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/services"
)

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	ProjectID  string `json:"project_id" jsonschema:"the project receiving the document"`
	Name       string `json:"name" jsonschema:"display name shown with retrieval results"`
	Text       string `json:"text" jsonschema:"the raw document text"`
	ProviderID string `json:"provider_id" jsonschema:"the embedding provider id to embed with"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	ProjectID  string  `json:"project_id" jsonschema:"the project to search"`
	Query      string  `json:"query" jsonschema:"natural language query"`
	ProviderID string  `json:"provider_id" jsonschema:"the embedding provider id; must match the one used at ingestion"`
	TopK       int     `json:"top_k,omitempty" jsonschema:"number of chunks to return (default from settings)"`
	Diversity  float64 `json:"diversity,omitempty" jsonschema:"penalty in [0,1] for near-duplicate chunks (0 disables)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Matches []MatchOutput `json:"matches"`
	Count   int           `json:"count"`
	Context string        `json:"context"`
}

// MatchOutput represents a single retrieved chunk.
type MatchOutput struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Ordinal      int     `json:"ordinal"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project whose documents to list"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is a document listing entry.
type DocumentOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk, embed and store a text document in a project",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the chunks of a project most similar to a query, with a ready-to-use context block",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents ingested into a project",
	}, s.handleListDocuments)
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	result, err := s.ports.RAG.IngestDocument(ctx, domain.IngestRequest{
		ProjectID:  input.ProjectID,
		Name:       input.Name,
		Text:       input.Text,
		ProviderID: input.ProviderID,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: result.DocumentID,
		ChunkCount: result.ChunkCount,
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	matches, err := s.ports.RAG.Retrieve(ctx, domain.RetrieveRequest{
		ProjectID:  input.ProjectID,
		Query:      input.Query,
		ProviderID: input.ProviderID,
		TopK:       input.TopK,
		Diversity:  input.Diversity,
	})
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Matches: make([]MatchOutput, len(matches)),
		Count:   len(matches),
		Context: services.BuildContext(matches),
	}
	for i := range matches {
		output.Matches[i] = MatchOutput{
			ChunkID:      matches[i].Chunk.ID,
			DocumentID:   matches[i].Chunk.DocumentID,
			DocumentName: matches[i].DocumentName,
			Ordinal:      matches[i].Chunk.Ordinal,
			Score:        matches[i].Score,
			Content:      matches[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.RAG.ListDocuments(ctx, input.ProjectID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: documentOutputs(docs),
		Count:     len(docs),
	}
	return nil, output, nil
}

func documentOutputs(docs []domain.DocumentSummary) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i := range docs {
		out[i] = DocumentOutput{
			ID:         docs[i].ID,
			Name:       docs[i].Name,
			ChunkCount: docs[i].ChunkCount,
			CreatedAt:  docs[i].CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}
