package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/arkival/arkival/internal/domain"
	"github.com/arkival/arkival/internal/vector"
)

// scalarStore is the fallback for engines without a search module: the
// embedding column is an opaque blob, candidates are narrowed through the
// membership sets and similarity is computed in process over the filtered
// subset.
type scalarStore struct {
	base
}

// Mode reports ModeScalar.
func (s *scalarStore) Mode() Mode { return ModeScalar }

// Initialize verifies connectivity. Hashes and membership sets are created
// lazily on first write; there is no schema to declare without the module.
func (s *scalarStore) Initialize(ctx context.Context) error {
	if err := s.eng.Ping(ctx); err != nil {
		return fmt.Errorf("ping engine: %w: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Search intersects the filter sets to get candidate ids, fetches the rows
// in one pipelined round-trip and ranks them by in-process cosine
// similarity. Ranking is similarity descending with a stable sort over the
// deterministic candidate order, the inclusive threshold applies before the
// limit, and an empty result is not an error.
func (s *scalarStore) Search(
	ctx context.Context, queryVector []float32, filter domain.SearchFilter, limit int,
) ([]domain.SearchResult, error) {
	if err := s.validateQuery(queryVector, limit); err != nil {
		return nil, err
	}

	ids, err := s.eng.SInter(ctx, s.filterSetKeys(filter)...)
	if err != nil {
		return nil, fmt.Errorf("intersect filter sets: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	// Set membership comes back unordered; fix the scan order so ties in
	// similarity rank deterministically across runs.
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}

	rows, err := s.eng.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(rows))
	for i, fields := range rows {
		if len(fields) == 0 {
			// id still in a set but the hash is gone; skip quietly
			continue
		}
		emb, err := embeddingFromFields(ids[i], fields)
		if err != nil {
			return nil, err
		}
		sim, err := vector.Cosine(queryVector, emb)
		if err != nil {
			return nil, err
		}
		if filter.MinSimilarity > 0 && sim < filter.MinSimilarity {
			continue
		}
		results = append(results, resultFromFields(ids[i], fields, sim))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
