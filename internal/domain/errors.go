package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the backing store cannot be reached.
	// Fatal at initialization and surfaced to the caller on every operation.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDimensionMismatch signals vectors of different lengths. Never coerced.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbeddingFailed signals an embedding provider failure.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrBatchWriteFailed signals that a batch upsert was rolled back.
	ErrBatchWriteFailed = errors.New("batch write failed")
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query is empty")
)
