package search

import (
	"context"

	"github.com/arkival/arkival/internal/domain"
)

// Searcher ranks stored records against a query vector.
type Searcher interface {
	Search(ctx context.Context, queryVector []float32, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error)
}
