package ingest

import (
	"context"

	"github.com/arkival/arkival/internal/domain"
)

// Chunker splits raw document text into overlapping pieces.
type Chunker interface {
	Split(text string) []string
}

// RecordStore persists embedded chunk batches.
type RecordStore interface {
	Store(ctx context.Context, records []domain.Record) error
}
