package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// Adapters wrap them with context using fmt.Errorf("...: %w", err).
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates inconsistent configuration values,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnsupportedType indicates no normaliser handles a file's type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Provider Errors.

	// ErrAuth indicates the embedding provider rejected the credentials.
	// Never retried.
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates a transient provider or network failure.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrUnknownProvider indicates no embedding provider is registered under an id.
	ErrUnknownProvider = errors.New("unknown embedding provider")

	// ErrEmbeddingFailed is returned by ingestion and retrieval when the
	// embedding step failed after retries, or failed with a non-retryable error.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrDimensionMismatch indicates vectors of different dimensions were compared
	// or written into the same project.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// Storage Errors.

	// ErrConstraintViolation indicates the store rejected a write.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrStorageUnavailable indicates the store could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsRetryable reports whether err is a transient provider failure worth retrying:
// rate limiting, unavailability, or a per-call deadline.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrInvalidInput) {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
