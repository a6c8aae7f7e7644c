// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
//
// Implementations report failures wrapped around one of the domain provider
// errors so callers can decide whether to retry:
//   - domain.ErrAuth: credentials rejected, never retried
//   - domain.ErrRateLimited: retried with backoff
//   - domain.ErrInvalidInput: request rejected, never retried
//   - domain.ErrUnavailable: transient network or server failure, retried
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingProvider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	// Zero means unknown until the first call.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ProviderResolver looks up the embedding provider registered under an id.
// Callers pass the id explicitly on every call; there is no default provider.
type ProviderResolver interface {
	// Resolve returns the provider for id, or an error wrapping
	// domain.ErrUnknownProvider.
	Resolve(ctx context.Context, id string) (EmbeddingProvider, error)

	// IDs returns the registered provider ids in sorted order.
	IDs() []string
}
