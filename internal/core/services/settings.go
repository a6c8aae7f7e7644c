package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyChunkSize         = "rag.chunk_size"
	keyChunkOverlap      = "rag.chunk_overlap"
	keyBatchSize         = "rag.embedding_batch_size"
	keyMaxConcurrency    = "rag.embedding_max_concurrency"
	keyMaxAttempts       = "rag.embedding_max_attempts"
	keyDefaultTopK       = "rag.default_top_k"
	keyMaxDocumentBytes  = "rag.max_document_bytes"
	keyProviderTimeout   = "rag.provider_timeout"
	keyStoragePath       = "storage.path"
	providersPrefix      = "providers."
	providerKind         = "kind"
	providerModel        = "model"
	providerBaseURL      = "base_url"
	providerAPIKey       = "api_key" //nolint:gosec // G101: config key name, not a credential.
	providerDimensions   = "dimensions"
	providerRequestsRate = "requests_per_second"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	resolver    driven.ProviderResolver
}

// NewSettingsService creates a new settings service.
// The resolver is optional and only needed by ValidateProvider.
func NewSettingsService(configStore driven.ConfigStore, resolver driven.ProviderResolver) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		resolver:    resolver,
	}
}

// SetResolver sets the provider resolver used by ValidateProvider.
// The resolver usually reads its providers from this service, so it is
// wired after construction.
func (s *SettingsService) SetResolver(resolver driven.ProviderResolver) {
	s.resolver = resolver
}

// Get retrieves current application settings, falling back to defaults
// for keys that are not set.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout := defaults.RAG.ProviderTimeout
	if raw := s.configStore.GetString(keyProviderTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, keyProviderTimeout, err)
		}
		timeout = d
	}

	settings := &domain.AppSettings{
		RAG: domain.RAGSettings{
			ChunkSize:               s.getInt(keyChunkSize, defaults.RAG.ChunkSize),
			ChunkOverlap:            s.getInt(keyChunkOverlap, defaults.RAG.ChunkOverlap),
			EmbeddingBatchSize:      s.getInt(keyBatchSize, defaults.RAG.EmbeddingBatchSize),
			EmbeddingMaxConcurrency: s.getInt(keyMaxConcurrency, defaults.RAG.EmbeddingMaxConcurrency),
			EmbeddingMaxAttempts:    s.getInt(keyMaxAttempts, defaults.RAG.EmbeddingMaxAttempts),
			DefaultTopK:             s.getInt(keyDefaultTopK, defaults.RAG.DefaultTopK),
			MaxDocumentBytes:        s.getInt(keyMaxDocumentBytes, defaults.RAG.MaxDocumentBytes),
			ProviderTimeout:         timeout,
		},
		Providers: s.loadProviders(),
		Storage: domain.StorageSettings{
			Path: s.configStore.GetString(keyStoragePath),
		},
	}

	if err := settings.RAG.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// SaveRAG persists chunking, embedding and retrieval settings.
func (s *SettingsService) SaveRAG(rag domain.RAGSettings) error {
	if err := rag.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, rag.ChunkSize},
		{keyChunkOverlap, rag.ChunkOverlap},
		{keyBatchSize, rag.EmbeddingBatchSize},
		{keyMaxConcurrency, rag.EmbeddingMaxConcurrency},
		{keyMaxAttempts, rag.EmbeddingMaxAttempts},
		{keyDefaultTopK, rag.DefaultTopK},
		{keyMaxDocumentBytes, rag.MaxDocumentBytes},
		{keyProviderTimeout, rag.ProviderTimeout.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// AddProvider registers or replaces an embedding provider.
// An empty model is filled in with the kind's default model.
func (s *SettingsService) AddProvider(p domain.ProviderSettings) error {
	if err := validateInput(providerInput{
		ID:                p.ID,
		Kind:              p.Kind.String(),
		BaseURL:           p.BaseURL,
		Dimensions:        p.Dimensions,
		RequestsPerSecond: p.RequestsPerSecond,
	}); err != nil {
		return err
	}

	if p.Model == "" {
		p.Model = domain.DefaultEmbeddingModels()[p.Kind]
	}

	// Replace rather than merge so stale fields do not survive.
	if err := s.configStore.Delete(providerKey(p.ID, "")); err != nil {
		return fmt.Errorf("reset provider %s: %w", p.ID, err)
	}

	values := []struct {
		field string
		value any
		set   bool
	}{
		{providerKind, p.Kind.String(), true},
		{providerModel, p.Model, true},
		{providerBaseURL, p.BaseURL, p.BaseURL != ""},
		{providerAPIKey, p.APIKey, p.APIKey != ""},
		{providerDimensions, p.Dimensions, p.Dimensions > 0},
		{providerRequestsRate, p.RequestsPerSecond, p.RequestsPerSecond > 0},
	}
	for _, v := range values {
		if !v.set {
			continue
		}
		if err := s.configStore.Set(providerKey(p.ID, v.field), v.value); err != nil {
			return fmt.Errorf("save provider %s %s: %w", p.ID, v.field, err)
		}
	}
	return nil
}

// RemoveProvider deletes an embedding provider.
func (s *SettingsService) RemoveProvider(id string) error {
	if len(s.configStore.Keys(providerKey(id, "")+".")) == 0 {
		return fmt.Errorf("provider %s: %w", id, domain.ErrNotFound)
	}
	return s.configStore.Delete(providerKey(id, ""))
}

// ValidateProvider checks that the provider registered under id is reachable.
func (s *SettingsService) ValidateProvider(ctx context.Context, id string) error {
	if s.resolver == nil {
		return errors.New("no provider resolver configured")
	}

	provider, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return err
	}
	return provider.Ping(ctx)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// loadProviders reads every providers.<id>.* group, sorted by id.
func (s *SettingsService) loadProviders() []domain.ProviderSettings {
	seen := make(map[string]bool)
	var ids []string
	for _, key := range s.configStore.Keys(providersPrefix) {
		id, _, ok := strings.Cut(strings.TrimPrefix(key, providersPrefix), ".")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)

	providers := make([]domain.ProviderSettings, 0, len(ids))
	for _, id := range ids {
		providers = append(providers, domain.ProviderSettings{
			ID:                id,
			Kind:              domain.AIProvider(s.configStore.GetString(providerKey(id, providerKind))),
			Model:             s.configStore.GetString(providerKey(id, providerModel)),
			BaseURL:           s.configStore.GetString(providerKey(id, providerBaseURL)),
			APIKey:            s.configStore.GetString(providerKey(id, providerAPIKey)),
			Dimensions:        s.configStore.GetInt(providerKey(id, providerDimensions)),
			RequestsPerSecond: s.configStore.GetFloat(providerKey(id, providerRequestsRate)),
		})
	}
	return providers
}

// providerKey builds "providers.<id>.<field>", or "providers.<id>" when field is empty.
func providerKey(id, field string) string {
	if field == "" {
		return providersPrefix + id
	}
	return providersPrefix + id + "." + field
}

// getInt returns the stored int or the default when unset.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}
