// Package mcp provides an MCP (Model Context Protocol) server adapter for ragkit.
// It lets AI assistants ingest documents and retrieve grounding context.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
