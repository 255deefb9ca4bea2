package arkival

import "github.com/arkival/arkival/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrStoreUnavailable  = domain.ErrStoreUnavailable
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrEmbeddingFailed   = domain.ErrEmbeddingFailed
	ErrBatchWriteFailed  = domain.ErrBatchWriteFailed
	ErrEmptyQuery        = domain.ErrEmptyQuery
)
