package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arkival/arkival/internal/db"
	"github.com/arkival/arkival/internal/domain"
)

// indexedStore computes cosine distance inside the storage engine via the
// native vector index.
type indexedStore struct {
	base
}

// Mode reports ModeIndexed.
func (s *indexedStore) Mode() Mode { return ModeIndexed }

// Initialize creates the vector index over the record namespace: TAG fields
// for the year/filename filter pushdown and a FLAT cosine vector field with
// the configured dimension. Re-running against an existing index is a no-op.
func (s *indexedStore) Initialize(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     s.indexName(),
		Prefixes: []string{s.recordPrefix()},
		Fields: []db.IndexField{
			{Name: fieldYear, Type: db.IndexFieldTag},
			{Name: fieldFilename, Type: db.IndexFieldTag},
			{Name: fieldChunkIndex, Type: db.IndexFieldNumeric},
			{
				Name:           fieldEmbedding,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      s.cfg.Dimension,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	err := s.eng.CreateIndex(ctx, def)
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create vector index: %w: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Search pushes the metadata filters into the KNN query and lets the engine
// rank by cosine distance; the inclusive similarity threshold is applied to
// the engine scores before returning, so it acts before limit truncation.
func (s *indexedStore) Search(
	ctx context.Context, queryVector []float32, filter domain.SearchFilter, limit int,
) ([]domain.SearchResult, error) {
	if err := s.validateQuery(queryVector, limit); err != nil {
		return nil, err
	}

	var tags []db.TagFilter
	if filter.Year != "" {
		tags = append(tags, db.TagFilter{Field: fieldYear, Value: filter.Year})
	}
	if filter.Filename != "" {
		tags = append(tags, db.TagFilter{Field: fieldFilename, Value: filter.Filename})
	}

	q := &db.KNNQuery{
		IndexName: s.indexName(),
		Filters:   tags,
		Vector:    queryVector,
		K:         limit,
		ReturnFields: []string{
			fieldContent, fieldFilename, fieldYear,
			fieldChunkIndex, fieldTotalChunks, scoreField,
		},
	}

	sr, err := s.eng.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if filter.MinSimilarity > 0 && entry.Score < filter.MinSimilarity {
			continue
		}
		id := strings.TrimPrefix(entry.Key, s.recordPrefix())
		results = append(results, resultFromFields(id, entry.Fields, entry.Score))
	}

	return results, nil
}
