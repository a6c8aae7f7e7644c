// Package ai provides factory functions and a registry for embedding
// provider adapters.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	ollamaembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragkit/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// EnvOpenAIAPIKey supplies the API key for OpenAI providers that have none configured.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// CreateEmbeddingProvider creates the adapter for a provider definition.
func CreateEmbeddingProvider(settings domain.ProviderSettings) (driven.EmbeddingProvider, error) {
	switch settings.Kind {
	case domain.AIProviderOllama:
		return ollamaembed.New(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.ResolvedDimensions(),
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.AIProviderOpenAI:
		apiKey := settings.APIKey
		if apiKey == "" {
			apiKey = os.Getenv(EnvOpenAIAPIKey)
		}
		return openaiembed.New(openaiembed.Config{
			APIKey:            apiKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("%w: provider %q has unsupported kind %q",
			domain.ErrInvalidConfig, settings.ID, settings.Kind)
	}
}

// CreateAndValidate creates a provider and checks connectivity with Ping.
// The provider is closed again if the check fails.
func CreateAndValidate(ctx context.Context, settings domain.ProviderSettings) (driven.EmbeddingProvider, error) {
	provider, err := CreateEmbeddingProvider(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("provider %s unreachable: %w", settings.ID, err)
	}
	return provider, nil
}
