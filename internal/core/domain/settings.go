package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Defaults for RAG settings.
const (
	DefaultChunkSize               = 512
	DefaultChunkOverlap            = 50
	DefaultEmbeddingBatchSize      = 32
	DefaultEmbeddingMaxConcurrency = 4
	DefaultEmbeddingMaxAttempts    = 3
	DefaultTopK                    = 5
	MaxTopK                        = 100
	DefaultMaxDocumentBytes        = 10 * 1024 * 1024
	MaxQueryLength                 = 10000
	MaxNameLength                  = 200
	DefaultProviderTimeout         = 30 * time.Second
	DefaultDiversityPenalty        = 0.3
)

// AIProvider identifies the kind of embedding service behind a provider id.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// ProviderSettings configures one embedding provider under a stable id.
// Callers pass the id on every ingest and retrieve call.
type ProviderSettings struct {
	// ID is the identity callers refer to, e.g. "openai-small".
	ID string

	// Kind selects the adapter.
	Kind AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty means the adapter default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the expected vector size. Zero means look it up by model.
	Dimensions int

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the provider has everything it needs to run.
func (p ProviderSettings) IsConfigured() bool {
	if p.ID == "" || !p.Kind.IsValid() {
		return false
	}
	if p.Kind.RequiresAPIKey() && p.APIKey == "" {
		return false
	}
	return true
}

// ResolvedDimensions returns Dimensions, falling back to the known size of Model.
func (p ProviderSettings) ResolvedDimensions() int {
	if p.Dimensions > 0 {
		return p.Dimensions
	}
	return EmbeddingDimensions()[p.Model]
}

// RAGSettings holds chunking, embedding and retrieval configuration.
type RAGSettings struct {
	ChunkSize               int
	ChunkOverlap            int
	EmbeddingBatchSize      int
	EmbeddingMaxConcurrency int
	EmbeddingMaxAttempts    int
	DefaultTopK             int
	MaxDocumentBytes        int
	ProviderTimeout         time.Duration
}

// Validate checks the settings for consistency.
func (s RAGSettings) Validate() error {
	switch {
	case s.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfig, s.ChunkSize)
	case s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap must be in [0, %d), got %d",
			ErrInvalidConfig, s.ChunkSize, s.ChunkOverlap)
	case s.EmbeddingBatchSize <= 0:
		return fmt.Errorf("%w: embedding_batch_size must be positive", ErrInvalidConfig)
	case s.EmbeddingMaxConcurrency <= 0:
		return fmt.Errorf("%w: embedding_max_concurrency must be positive", ErrInvalidConfig)
	case s.EmbeddingMaxAttempts <= 0:
		return fmt.Errorf("%w: embedding_max_attempts must be positive", ErrInvalidConfig)
	case s.DefaultTopK <= 0 || s.DefaultTopK > MaxTopK:
		return fmt.Errorf("%w: default_top_k must be in [1, %d]", ErrInvalidConfig, MaxTopK)
	case s.MaxDocumentBytes <= 0:
		return fmt.Errorf("%w: max_document_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}

// StorageSettings configures persistence.
type StorageSettings struct {
	// Path is the directory holding the SQLite database. Empty means ~/.ragkit/data.
	Path string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// RAG holds chunking, embedding and retrieval settings.
	RAG RAGSettings

	// Providers lists the configured embedding providers.
	Providers []ProviderSettings

	// Storage holds persistence settings.
	Storage StorageSettings
}

// Provider returns the provider settings with the given id.
func (s *AppSettings) Provider(id string) (ProviderSettings, bool) {
	for _, p := range s.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderSettings{}, false
}

// DefaultRAGSettings returns RAG settings with sensible defaults.
func DefaultRAGSettings() RAGSettings {
	return RAGSettings{
		ChunkSize:               DefaultChunkSize,
		ChunkOverlap:            DefaultChunkOverlap,
		EmbeddingBatchSize:      DefaultEmbeddingBatchSize,
		EmbeddingMaxConcurrency: DefaultEmbeddingMaxConcurrency,
		EmbeddingMaxAttempts:    DefaultEmbeddingMaxAttempts,
		DefaultTopK:             DefaultTopK,
		MaxDocumentBytes:        DefaultMaxDocumentBytes,
		ProviderTimeout:         DefaultProviderTimeout,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// No providers are configured; users add them with `ragkit provider add`.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RAG: DefaultRAGSettings(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
