// Package store persists chunk records and answers similarity queries. One
// logical Store contract, two physical backends: a native vector index when
// the storage engine's search module is present, and a scalar fallback that
// fetches candidate rows and ranks them in process. The mode is probed once
// at open time and fixed for the store's lifetime.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/db"
	"github.com/arkival/arkival/internal/domain"
)

// Mode identifies the physical backend a store was opened with.
type Mode string

const (
	// ModeIndexed computes cosine distance inside the storage engine.
	ModeIndexed Mode = "indexed"
	// ModeScalar fetches candidate rows and computes similarity in process.
	ModeScalar Mode = "scalar"
)

// Store is the record persistence and similarity-search contract shared by
// both backends.
type Store interface {
	// Initialize idempotently creates the backing schema and indexes.
	Initialize(ctx context.Context) error
	// Store persists the batch as a single all-or-nothing unit, upserting
	// by record ID.
	Store(ctx context.Context, records []domain.Record) error
	// Search ranks stored records against the query vector, applying the
	// filter's metadata predicates and inclusive similarity threshold
	// before truncating to limit.
	Search(ctx context.Context, queryVector []float32, filter domain.SearchFilter, limit int) ([]domain.SearchResult, error)
	// Stats returns a consistent snapshot of corpus-level counts.
	Stats(ctx context.Context) (domain.Stats, error)
	// Delete removes a single record and its index memberships.
	Delete(ctx context.Context, id string) error
	// Mode reports the backend selected at open time.
	Mode() Mode
	// Close releases held connections; idempotent.
	Close()
}

// engine is the consumer interface over the storage client (ISP).
type engine interface {
	Ping(ctx context.Context) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SCard(ctx context.Context, key string) (int, error)
	SInter(ctx context.Context, keys ...string) ([]string, error)
	ExecBatch(ctx context.Context, ops []db.BatchOp) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	Close()
}

// Config fixes the store's key namespace and embedding dimension. The
// dimension is system-wide: every stored embedding and every query vector
// must match it.
type Config struct {
	KeyPrefix string
	Dimension int
}

// Open probes the engine for native vector-index support and returns the
// matching backend. A missing search module is informational only and
// triggers the scalar fallback; an unreachable engine is fatal.
func Open(ctx context.Context, eng engine, cfg Config, logger *zap.Logger) (Store, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.KeyPrefix == "" {
		return nil, fmt.Errorf("key prefix is required")
	}

	if err := eng.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping engine: %w: %w", err, domain.ErrStoreUnavailable)
	}

	b := &base{eng: eng, cfg: cfg, logger: logger}

	_, err := eng.IndexExists(ctx, b.indexName())
	switch {
	case err == nil:
		logger.Info("vector index support detected", zap.String("mode", string(ModeIndexed)))
		return &indexedStore{base: base{eng: eng, cfg: cfg, logger: logger}}, nil
	case errors.Is(err, db.ErrSearchUnavailable):
		logger.Warn("search module unavailable, falling back to scalar similarity",
			zap.String("mode", string(ModeScalar)))
		return &scalarStore{base: base{eng: eng, cfg: cfg, logger: logger}}, nil
	default:
		// Probe failures other than a hard connection loss also degrade to
		// scalar mode; they must never be fatal.
		logger.Warn("vector index probe failed, falling back to scalar similarity",
			zap.Error(err))
		return &scalarStore{base: base{eng: eng, cfg: cfg, logger: logger}}, nil
	}
}
