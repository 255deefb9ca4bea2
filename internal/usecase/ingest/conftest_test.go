package ingest

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/domain"
)

// mockChunker implements Chunker for tests.
type mockChunker struct {
	splitFn func(text string) []string
}

func (m *mockChunker) Split(text string) []string {
	if m.splitFn != nil {
		return m.splitFn(text)
	}
	return []string{text}
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls = append(m.calls, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0, 0}}, nil
}

// mockStore implements RecordStore for tests.
type mockStore struct {
	storeFn func(ctx context.Context, records []domain.Record) error
	batches [][]domain.Record
}

func (m *mockStore) Store(ctx context.Context, records []domain.Record) error {
	m.batches = append(m.batches, records)
	if m.storeFn != nil {
		return m.storeFn(ctx, records)
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *mockChunker, *mockEmbedder, *mockStore) {
	t.Helper()
	ch := &mockChunker{}
	emb := &mockEmbedder{}
	st := &mockStore{}
	return New(ch, emb, st, zap.NewNop()), ch, emb, st
}
