package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// SaveRAG persists chunking, embedding and retrieval settings.
	SaveRAG(settings domain.RAGSettings) error

	// AddProvider registers or replaces an embedding provider.
	AddProvider(provider domain.ProviderSettings) error

	// RemoveProvider deletes an embedding provider.
	RemoveProvider(id string) error

	// ValidateProvider pings the provider registered under id.
	ValidateProvider(ctx context.Context, id string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
