package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ProviderResolver = (*Registry)(nil)

// SettingsLoader returns the current application settings.
type SettingsLoader func() (*domain.AppSettings, error)

// Decorator wraps a freshly created provider, e.g. with instrumentation.
type Decorator func(id string, p driven.EmbeddingProvider) driven.EmbeddingProvider

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDecorator wraps every provider the registry creates.
func WithDecorator(d Decorator) RegistryOption {
	return func(r *Registry) { r.decorate = d }
}

// WithFactory replaces CreateEmbeddingProvider, mainly for tests.
func WithFactory(f func(domain.ProviderSettings) (driven.EmbeddingProvider, error)) RegistryOption {
	return func(r *Registry) { r.create = f }
}

type cachedProvider struct {
	settings domain.ProviderSettings
	provider driven.EmbeddingProvider
}

// Registry resolves provider ids against the current settings. Providers
// are created on first use and rebuilt when their definition changes.
// A replaced provider may still be serving a caller, so it is only closed
// by Close.
type Registry struct {
	load     SettingsLoader
	create   func(domain.ProviderSettings) (driven.EmbeddingProvider, error)
	decorate Decorator

	mu      sync.Mutex
	cache   map[string]cachedProvider
	retired []driven.EmbeddingProvider
}

// NewRegistry creates a registry reading provider definitions from load.
func NewRegistry(load SettingsLoader, opts ...RegistryOption) *Registry {
	r := &Registry{
		load:   load,
		create: CreateEmbeddingProvider,
		cache:  make(map[string]cachedProvider),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the provider registered under id.
func (r *Registry) Resolve(_ context.Context, id string) (driven.EmbeddingProvider, error) {
	settings, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	def, ok := settings.Provider(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[id]; ok {
		if cached.settings == def {
			return cached.provider, nil
		}
		logger.Debug("Provider %s definition changed, recreating", id)
		r.retired = append(r.retired, cached.provider)
		delete(r.cache, id)
	}

	provider, err := r.create(def)
	if err != nil {
		return nil, fmt.Errorf("create provider %s: %w", id, err)
	}
	if r.decorate != nil {
		provider = r.decorate(id, provider)
	}

	r.cache[id] = cachedProvider{settings: def, provider: provider}
	logger.Debug("Created provider %s (%s, model=%s)", id, def.Kind, provider.ModelName())
	return provider, nil
}

// IDs returns the configured provider ids in sorted order.
func (r *Registry) IDs() []string {
	settings, err := r.load()
	if err != nil {
		logger.Warn("load settings: %v", err)
		return nil
	}

	ids := make([]string, 0, len(settings.Providers))
	for _, p := range settings.Providers {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}

// Close releases every cached and retired provider.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, cached := range r.cache {
		cached.provider.Close()
		delete(r.cache, id)
	}
	for _, p := range r.retired {
		p.Close()
	}
	r.retired = nil
	return nil
}
