package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/arkival/arkival/internal/domain"
)

type mockReader struct {
	stats domain.Stats
	err   error
}

func (m *mockReader) Stats(context.Context) (domain.Stats, error) { return m.stats, m.err }

func TestCollect_PassesThroughSnapshot(t *testing.T) {
	want := domain.Stats{
		TotalDocuments: 12,
		DocumentsByYear: []domain.YearCount{
			{Year: "2021", Count: 8},
			{Year: "2020", Count: 4},
		},
		DocumentsByFile: []domain.FileCount{
			{Filename: "report.pdf", Count: 12},
		},
	}
	svc := New(&mockReader{stats: want})

	got, err := svc.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalDocuments != 12 || len(got.DocumentsByYear) != 2 || len(got.DocumentsByFile) != 1 {
		t.Errorf("unexpected stats: %+v", got)
	}
}

func TestCollect_StoreErrorWrapped(t *testing.T) {
	cause := errors.New("connection lost")
	svc := New(&mockReader{err: cause})

	_, err := svc.Collect(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
