package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/arkival/arkival/internal/domain"
)

func storeScalarCorpus(t *testing.T, s *scalarStore) {
	t.Helper()
	recs := []domain.Record{
		testRecord("a_chunk_0", []float32{1, 0, 0, 0}),
		testRecord("a_chunk_1", []float32{0.9, 0.1, 0, 0}),
	}
	other := testRecord("b_chunk_0", []float32{0, 0, 1, 0})
	other.Year = "2021"
	other.Filename = "notes_2021.pdf"
	recs = append(recs, other)

	if err := s.Store(context.Background(), recs); err != nil {
		t.Fatalf("store corpus: %v", err)
	}
}

func TestScalarSearch_RoundTripRanksSelfFirst(t *testing.T) {
	s, _ := newScalarStore(t)
	storeScalarCorpus(t, s)

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, domain.SearchFilter{}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "a_chunk_0" {
		t.Fatalf("expected exact match first, got %s", results[0].ID)
	}
	if math.Abs(results[0].Similarity-1.0) > 1e-6 {
		t.Fatalf("expected self-similarity ~1.0, got %v", results[0].Similarity)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Fatalf("results not sorted descending at %d", i)
		}
	}
}

func TestScalarSearch_YearFilterExcludesOtherYears(t *testing.T) {
	s, _ := newScalarStore(t)
	storeScalarCorpus(t, s)

	// The 2021 record is the closest match but must be excluded.
	results, err := s.Search(context.Background(), []float32{0, 0, 1, 0}, domain.SearchFilter{Year: "2020"}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected year-2020 results")
	}
	for _, r := range results {
		if r.Year != "2020" {
			t.Fatalf("filter leaked record from year %s", r.Year)
		}
	}
}

func TestScalarSearch_FilenameFilter(t *testing.T) {
	s, _ := newScalarStore(t)
	storeScalarCorpus(t, s)

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0},
		domain.SearchFilter{Filename: "notes_2021.pdf"}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b_chunk_0" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestScalarSearch_MinSimilarityEmptyResultIsNotError(t *testing.T) {
	s, _ := newScalarStore(t)
	storeScalarCorpus(t, s)

	// Nothing in the corpus is within 0.99 of this direction.
	results, err := s.Search(context.Background(), []float32{0, 0, 0, 1},
		domain.SearchFilter{MinSimilarity: 0.99}, 5)
	if err != nil {
		t.Fatalf("empty result set must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestScalarSearch_MinSimilarityIsInclusive(t *testing.T) {
	s, _ := newScalarStore(t)
	if err := s.Store(context.Background(), []domain.Record{
		testRecord("a_chunk_0", []float32{1, 0, 0, 0}),
	}); err != nil {
		t.Fatalf("store: %v", err)
	}

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0},
		domain.SearchFilter{MinSimilarity: 1.0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("threshold must be inclusive, got %d results", len(results))
	}
}

func TestScalarSearch_LimitTruncatesAfterThreshold(t *testing.T) {
	s, _ := newScalarStore(t)
	storeScalarCorpus(t, s)

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, domain.SearchFilter{}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "a_chunk_0" {
		t.Fatalf("limit must keep the top-ranked record, got %s", results[0].ID)
	}
}

func TestScalarSearch_QueryDimensionMismatch(t *testing.T) {
	s, _ := newScalarStore(t)
	storeScalarCorpus(t, s)

	_, err := s.Search(context.Background(), []float32{1, 0}, domain.SearchFilter{}, 5)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestScalarSearch_EmptyCorpus(t *testing.T) {
	s, _ := newScalarStore(t)

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, domain.SearchFilter{}, 5)
	if err != nil {
		t.Fatalf("search on empty corpus: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestScalarSearch_ZeroVectorScoresZero(t *testing.T) {
	s, _ := newScalarStore(t)

	zero := testRecord("z_chunk_0", []float32{0, 0, 0, 0})
	if err := s.Store(context.Background(), []domain.Record{zero}); err != nil {
		t.Fatalf("store: %v", err)
	}

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, domain.SearchFilter{}, 5)
	if err != nil {
		t.Fatalf("zero-norm vector must not error: %v", err)
	}
	if len(results) != 1 || results[0].Similarity != 0 {
		t.Fatalf("expected similarity exactly 0, got %+v", results)
	}
}
