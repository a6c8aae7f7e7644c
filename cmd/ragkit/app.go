package main

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/metrics"
	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/services"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// app owns the adapters behind the CLI services.
type app struct {
	services cli.Services
	store    *sqlite.Store
	registry *ai.Registry
}

// newApp wires config, storage, providers and services. An empty home
// uses ~/.ragkit.
func newApp(home string) (*app, error) {
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, nil)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	registry := ai.NewRegistry(settingsService.Get, ai.WithDecorator(
		func(id string, p driven.EmbeddingProvider) driven.EmbeddingProvider {
			return metrics.WrapProvider(m, id, p)
		},
	))
	settingsService.SetResolver(registry)

	dataDir := settings.Storage.Path
	if dataDir == "" && home != "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("Using database %s", store.Path())

	ragService, err := services.NewRAGService(
		store.ProjectStore(),
		metrics.WrapChunkStore(m, store.ChunkStore()),
		registry,
		settings.RAG,
	)
	if err != nil {
		store.Close()
		registry.Close()
		return nil, err
	}

	return &app{
		services: cli.Services{
			RAG:      ragService,
			Projects: services.NewProjectService(store.ProjectStore()),
			Settings: settingsService,
			Metrics:  reg,
		},
		store:    store,
		registry: registry,
	}, nil
}

// Close releases providers and the database.
func (a *app) Close() {
	if err := a.registry.Close(); err != nil {
		logger.Warn("closing providers: %v", err)
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store: %v", err)
	}
}
