package driven

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Normaliser extracts ingestible plain text from a file.
// Each normaliser handles specific MIME types (e.g., Markdown, HTML).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise returns the document text with formatting markup removed.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)
}
