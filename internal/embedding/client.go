// Package embedding dispatches embedding requests to a provider in
// concurrent batches with bounded retries.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Config controls batching, concurrency and retries.
type Config struct {
	// BatchSize is the maximum number of texts per provider call.
	BatchSize int

	// MaxConcurrency is the maximum number of provider calls in flight.
	MaxConcurrency int

	// MaxAttempts is the total number of attempts per batch, including the first.
	MaxAttempts int

	// CallTimeout bounds each provider call. Zero disables the timeout.
	CallTimeout time.Duration

	// Backoff controls the wait between attempts.
	Backoff BackoffConfig
}

// DefaultConfig returns the default embedding dispatch configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:      domain.DefaultEmbeddingBatchSize,
		MaxConcurrency: domain.DefaultEmbeddingMaxConcurrency,
		MaxAttempts:    domain.DefaultEmbeddingMaxAttempts,
		CallTimeout:    domain.DefaultProviderTimeout,
		Backoff:        DefaultBackoffConfig(),
	}
}

// ConfigFromSettings derives a Config from RAG settings.
func ConfigFromSettings(s domain.RAGSettings) Config {
	cfg := DefaultConfig()
	cfg.BatchSize = s.EmbeddingBatchSize
	cfg.MaxConcurrency = s.EmbeddingMaxConcurrency
	cfg.MaxAttempts = s.EmbeddingMaxAttempts
	cfg.CallTimeout = s.ProviderTimeout
	return cfg
}

// Client embeds ordered text sequences through an EmbeddingProvider.
// It is safe for concurrent use.
type Client struct {
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client. Returns domain.ErrInvalidConfig for
// non-positive batch size, concurrency or attempts.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BatchSize <= 0 || cfg.MaxConcurrency <= 0 || cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("%w: batch size, concurrency and attempts must be positive", domain.ErrInvalidConfig)
	}
	return &Client{cfg: cfg, sleep: sleepContext}, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// EmbedBatch returns one vector per text with out[i] embedding texts[i].
//
// Texts are split into consecutive batches of at most BatchSize and up to
// MaxConcurrency batches run at once. Rate-limited, unavailable and timed
// out calls are retried up to MaxAttempts; any other failure, or running
// out of attempts, cancels the remaining batches and returns an error
// wrapping domain.ErrEmbeddingFailed and the cause. No partial result is
// ever returned.
func (c *Client) EmbedBatch(ctx context.Context, provider driven.EmbeddingProvider, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	batches := (len(texts) + c.cfg.BatchSize - 1) / c.cfg.BatchSize

	logger.Debug("Embedding %d texts in %d batches (size=%d, concurrency=%d, model=%s)",
		len(texts), batches, c.cfg.BatchSize, c.cfg.MaxConcurrency, provider.ModelName())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)

	for b := 0; b < batches; b++ {
		lo := b * c.cfg.BatchSize
		hi := min(lo+c.cfg.BatchSize, len(texts))

		g.Go(func() error {
			vectors, err := c.embedWithRetry(gctx, provider, texts[lo:hi], b)
			if err != nil {
				return fmt.Errorf("%w: batch %d: %w", domain.ErrEmbeddingFailed, b, err)
			}
			copy(out[lo:hi], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkUniformDimension(out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	return out, nil
}

// EmbedOne embeds a single text as a one-item batch.
func (c *Client) EmbedOne(ctx context.Context, provider driven.EmbeddingProvider, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, provider, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embedWithRetry calls the provider for one batch, retrying transient failures.
func (c *Client) embedWithRetry(
	ctx context.Context, provider driven.EmbeddingProvider, batch []string, index int,
) ([][]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vectors, err := c.call(ctx, provider, batch)
		if err == nil {
			if attempt > 1 {
				logger.Debug("Batch %d succeeded on attempt %d", index, attempt)
			}
			return vectors, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !domain.IsRetryable(err) {
			return nil, err
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		wait := c.cfg.Backoff.CalculateBackoff(attempt - 1)
		logger.Warn("Batch %d attempt %d/%d failed, retrying in %s: %v",
			index, attempt, c.cfg.MaxAttempts, wait, err)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("gave up after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

// call performs a single provider request under the per-call timeout.
func (c *Client) call(ctx context.Context, provider driven.EmbeddingProvider, batch []string) ([][]float32, error) {
	callCtx := ctx
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}

	vectors, err := provider.Embed(callCtx, batch)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) &&
			!errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return nil, err
	}

	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(batch))
	}
	return vectors, nil
}

func checkUniformDimension(vectors [][]float32) error {
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: provider returned an empty vector", domain.ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
