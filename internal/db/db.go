// Package db defines the narrow storage-engine interfaces the rest of the
// system consumes, plus the query and index definitions shared with the
// engine-specific implementations.
package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	SetStore
	KVStore
	BatchWriter
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based record operations.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// SetStore provides membership-set operations backing the metadata indexes.
type SetStore interface {
	SCard(ctx context.Context, key string) (int, error)
	SInter(ctx context.Context, keys ...string) ([]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...string) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Batch op kinds understood by ExecBatch.
const (
	BatchHSet   = "HSET"
	BatchHSetNX = "HSETNX"
	BatchSAdd   = "SADD"
	BatchSRem   = "SREM"
	BatchDel    = "DEL"
)

// BatchOp is one command inside an atomic batch.
type BatchOp struct {
	Kind    string
	Key     string
	Fields  map[string]string // HSET
	Field   string            // HSETNX
	Value   string            // HSETNX
	Members []string          // SADD / SREM
}

// BatchWriter applies a sequence of write operations as one all-or-nothing
// unit. A failed batch leaves no partial writes visible.
type BatchWriter interface {
	ExecBatch(ctx context.Context, ops []BatchOp) error
}

// IndexManager provides vector-index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides KNN search over a vector index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// TagFilter is an exact-match predicate pushed into the index query.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. Score is cosine
// similarity, already converted from the engine's distance.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
