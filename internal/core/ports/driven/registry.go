package driven

import (
	"context"
)

// NormaliserRegistry selects the appropriate normaliser for a file.
// It maintains a priority-ordered list of normalisers and dispatches
// on the MIME type detected from the file name.
type NormaliserRegistry interface {
	// Extract returns the plain text of a file using the best matching
	// normaliser. Returns ErrUnsupportedType if no normaliser handles the
	// file's type.
	Extract(ctx context.Context, path string, content []byte) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
