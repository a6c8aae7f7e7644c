package mcp

import (
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// RAG ingests documents and answers retrieval queries.
	RAG driving.RAGService

	// Projects lists projects for the projects resource. Optional.
	Projects driving.ProjectService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}
