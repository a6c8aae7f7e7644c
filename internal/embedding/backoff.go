package embedding

import "time"

// BackoffConfig controls the wait between retry attempts.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoffConfig returns 500ms doubling up to 10s.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    500 * time.Millisecond,
		Max:        10 * time.Second,
		Multiplier: 2,
	}
}

// CalculateBackoff returns the wait before retry number retryCount (0-based).
func (c BackoffConfig) CalculateBackoff(retryCount int) time.Duration {
	backoff := c.Initial
	for i := 0; i < retryCount; i++ {
		backoff = time.Duration(float64(backoff) * c.Multiplier)
		if c.Max > 0 && backoff > c.Max {
			return c.Max
		}
	}
	if c.Max > 0 && backoff > c.Max {
		return c.Max
	}
	return backoff
}
