package store

import (
	"context"
	"errors"
	"testing"

	"github.com/arkival/arkival/internal/db"
	"github.com/arkival/arkival/internal/domain"
)

func TestIndexedInitialize_CreatesSchema(t *testing.T) {
	s, eng := newIndexedStore(t)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(eng.createdDefs) != 1 {
		t.Fatalf("expected one index definition, got %d", len(eng.createdDefs))
	}

	def := eng.createdDefs[0]
	if def.Name != "arkival:idx" {
		t.Fatalf("unexpected index name %s", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "arkival:doc:" {
		t.Fatalf("unexpected prefixes %v", def.Prefixes)
	}

	var vec *db.IndexField
	for i := range def.Fields {
		if def.Fields[i].Type == db.IndexFieldVector {
			vec = &def.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("index definition has no vector field")
	}
	if vec.VectorDim != 4 || vec.VectorDistance != db.DistanceCosine {
		t.Fatalf("unexpected vector field: %+v", vec)
	}
}

func TestIndexedInitialize_ExistingIndexIsNoop(t *testing.T) {
	s, eng := newIndexedStore(t)
	eng.createIndexErr = db.ErrIndexExists

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("re-initialize must be idempotent: %v", err)
	}
}

func TestIndexedInitialize_OtherErrorIsFatal(t *testing.T) {
	s, eng := newIndexedStore(t)
	eng.createIndexErr = errors.New("out of memory")

	err := s.Initialize(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestIndexedSearch_PushesFiltersIntoQuery(t *testing.T) {
	s, eng := newIndexedStore(t)

	var captured *db.KNNQuery
	eng.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{
					Key:   "arkival:doc:a_chunk_0",
					Score: 0.92,
					Fields: map[string]string{
						fieldContent:     "hello",
						fieldFilename:    "report_2020.pdf",
						fieldYear:        "2020",
						fieldChunkIndex:  "0",
						fieldTotalChunks: "3",
					},
				},
			},
		}, nil
	}

	filter := domain.SearchFilter{Year: "2020", Filename: "report_2020.pdf"}
	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, filter, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if captured == nil {
		t.Fatal("engine was not queried")
	}
	if captured.IndexName != "arkival:idx" {
		t.Fatalf("unexpected index %s", captured.IndexName)
	}
	if captured.K != 5 {
		t.Fatalf("unexpected K %d", captured.K)
	}
	if len(captured.Filters) != 2 {
		t.Fatalf("expected both metadata filters pushed down, got %v", captured.Filters)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.ID != "a_chunk_0" || r.Similarity != 0.92 || r.TotalChunks != 3 {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestIndexedSearch_AppliesMinSimilarityToEngineScores(t *testing.T) {
	s, eng := newIndexedStore(t)

	eng.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "arkival:doc:hi_chunk_0", Score: 0.95, Fields: map[string]string{fieldYear: "2020"}},
				{Key: "arkival:doc:lo_chunk_0", Score: 0.40, Fields: map[string]string{fieldYear: "2020"}},
			},
		}, nil
	}

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0},
		domain.SearchFilter{MinSimilarity: 0.9}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "hi_chunk_0" {
		t.Fatalf("threshold not applied to engine scores: %+v", results)
	}
}

func TestIndexedSearch_EmptyResultIsNotError(t *testing.T) {
	s, eng := newIndexedStore(t)

	eng.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, domain.SearchFilter{}, 5)
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestIndexedSearch_QueryDimensionMismatch(t *testing.T) {
	s, _ := newIndexedStore(t)

	_, err := s.Search(context.Background(), []float32{1}, domain.SearchFilter{}, 5)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}
