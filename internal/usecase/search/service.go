// Package search is the query façade: free text in, ranked hits out.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/arkival/arkival/internal/domain"
)

// DefaultLimit caps the result list when the caller does not ask for one.
const DefaultLimit = 5

// Service embeds query text and delegates ranking to the store.
type Service struct {
	embed    domain.Embedder
	store    Searcher
	maxLimit int
}

// New creates a search service. maxLimit bounds caller-supplied limits;
// zero disables the bound.
func New(embed domain.Embedder, store Searcher, maxLimit int) *Service {
	return &Service{embed: embed, store: store, maxLimit: maxLimit}
}

// SearchByText embeds the raw query exactly once (queries are never
// chunked) and forwards the vector with the filter to the store. Embedding
// failures propagate without retries.
func (s *Service) SearchByText(
	ctx context.Context, query string, limit int, filter domain.SearchFilter,
) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, emb.Embedding, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}
