// Package stats exposes metadata-only corpus statistics.
package stats

import (
	"context"
	"fmt"

	"github.com/arkival/arkival/internal/domain"
)

// Reader provides the store's statistics snapshot.
type Reader interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// Service wraps the store's statistics snapshot.
type Service struct {
	store Reader
}

// New creates a statistics service.
func New(store Reader) *Service {
	return &Service{store: store}
}

// Collect returns total record count plus counts grouped by year and by
// filename.
func (s *Service) Collect(ctx context.Context) (domain.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}
