package metrics

import (
	"context"
	"time"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure InstrumentedProvider implements the interface.
var _ driven.EmbeddingProvider = (*InstrumentedProvider)(nil)

// InstrumentedProvider records metrics for every Embed call.
type InstrumentedProvider struct {
	driven.EmbeddingProvider
	id string
	m  *Metrics
}

// WrapProvider instruments p under the provider id.
func WrapProvider(m *Metrics, id string, p driven.EmbeddingProvider) *InstrumentedProvider {
	return &InstrumentedProvider{EmbeddingProvider: p, id: id, m: m}
}

// Embed delegates to the wrapped provider and records the outcome.
func (p *InstrumentedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	model := p.ModelName()
	start := time.Now()

	vectors, err := p.EmbeddingProvider.Embed(ctx, texts)

	p.m.ProviderDuration.WithLabelValues(p.id, model).Observe(time.Since(start).Seconds())
	p.m.ProviderCalls.WithLabelValues(p.id, model, status(err)).Inc()
	p.m.ProviderTexts.WithLabelValues(p.id).Add(float64(len(texts)))
	return vectors, err
}
