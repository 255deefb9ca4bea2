package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/domain"
	healthuc "github.com/arkival/arkival/internal/usecase/health"
	ingestuc "github.com/arkival/arkival/internal/usecase/ingest"
	searchuc "github.com/arkival/arkival/internal/usecase/search"
	statsuc "github.com/arkival/arkival/internal/usecase/stats"
)

// fixedChunker splits on no boundary and returns the whole text as one chunk.
type fixedChunker struct{}

func (fixedChunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0, 0}}, nil
}

type fakeRecordStore struct {
	storeErr error
	batches  [][]domain.Record
}

func (f *fakeRecordStore) Store(_ context.Context, records []domain.Record) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.batches = append(f.batches, records)
	return nil
}

type fakeSearcher struct {
	results []domain.SearchResult
	err     error
}

func (f *fakeSearcher) Search(
	_ context.Context, _ []float32, _ domain.SearchFilter, _ int,
) ([]domain.SearchResult, error) {
	return f.results, f.err
}

type fakeStatsReader struct {
	stats domain.Stats
	err   error
}

func (f *fakeStatsReader) Stats(_ context.Context) (domain.Stats, error) {
	return f.stats, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// fixture bundles the fakes behind a ready-to-serve router.
type fixture struct {
	embedder *fakeEmbedder
	records  *fakeRecordStore
	searcher *fakeSearcher
	stats    *fakeStatsReader
	pinger   *fakePinger
	router   chirouter.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		embedder: &fakeEmbedder{},
		records:  &fakeRecordStore{},
		searcher: &fakeSearcher{},
		stats:    &fakeStatsReader{},
		pinger:   &fakePinger{},
	}

	logger := zap.NewNop()
	srv := NewServer(
		ingestuc.New(fixedChunker{}, f.embedder, f.records, logger),
		searchuc.New(f.embedder, f.searcher, 100),
		statsuc.New(f.stats),
		healthuc.New(f.pinger, nil),
		"scalar",
		logger,
	)

	r := chirouter.NewRouter()
	srv.Routes(r)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}
