package store

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/db"
)

// fakeEngine is an in-memory stand-in for the storage client. Batches apply
// atomically: a configured execErr leaves state untouched, mirroring a
// discarded transaction.
type fakeEngine struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	sets   map[string]map[string]bool

	pingErr        error
	indexExistsErr error
	createIndexErr error
	execErr        error

	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)

	batches     [][]db.BatchOp
	createdDefs []*db.IndexDefinition
	closed      int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]bool),
	}
}

func (f *fakeEngine) Ping(context.Context) error { return f.pingErr }

func (f *fakeEngine) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeEngine) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, err := f.HGetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (f *fakeEngine) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.hashes[key]
	return ok, nil
}

func (f *fakeEngine) Scan(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.sets {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range f.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeEngine) SCard(_ context.Context, key string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets[key]), nil
}

func (f *fakeEngine) SInter(_ context.Context, keys ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(keys) == 0 {
		return nil, nil
	}
	var members []string
	for m := range f.sets[keys[0]] {
		inAll := true
		for _, key := range keys[1:] {
			if !f.sets[key][m] {
				inAll = false
				break
			}
		}
		if inAll {
			members = append(members, m)
		}
	}
	return members, nil
}

func (f *fakeEngine) ExecBatch(_ context.Context, ops []db.BatchOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, ops)
	if f.execErr != nil {
		return f.execErr
	}
	for _, op := range ops {
		switch op.Kind {
		case db.BatchHSet:
			if f.hashes[op.Key] == nil {
				f.hashes[op.Key] = make(map[string]string)
			}
			for k, v := range op.Fields {
				f.hashes[op.Key][k] = v
			}
		case db.BatchHSetNX:
			if f.hashes[op.Key] == nil {
				f.hashes[op.Key] = make(map[string]string)
			}
			if _, ok := f.hashes[op.Key][op.Field]; !ok {
				f.hashes[op.Key][op.Field] = op.Value
			}
		case db.BatchSAdd:
			if f.sets[op.Key] == nil {
				f.sets[op.Key] = make(map[string]bool)
			}
			for _, m := range op.Members {
				f.sets[op.Key][m] = true
			}
		case db.BatchSRem:
			for _, m := range op.Members {
				delete(f.sets[op.Key], m)
			}
			if len(f.sets[op.Key]) == 0 {
				delete(f.sets, op.Key)
			}
		case db.BatchDel:
			delete(f.hashes, op.Key)
		}
	}
	return nil
}

func (f *fakeEngine) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	f.createdDefs = append(f.createdDefs, def)
	return f.createIndexErr
}

func (f *fakeEngine) IndexExists(context.Context, string) (bool, error) {
	if f.indexExistsErr != nil {
		return false, f.indexExistsErr
	}
	return false, nil
}

func (f *fakeEngine) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if f.searchKNNFn != nil {
		return f.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (f *fakeEngine) Close() { f.closed++ }

func testConfig() Config {
	return Config{KeyPrefix: "arkival:", Dimension: 4}
}

func newScalarStore(t *testing.T) (*scalarStore, *fakeEngine) {
	t.Helper()
	eng := newFakeEngine()
	return &scalarStore{base: base{eng: eng, cfg: testConfig(), logger: zap.NewNop()}}, eng
}

func newIndexedStore(t *testing.T) (*indexedStore, *fakeEngine) {
	t.Helper()
	eng := newFakeEngine()
	return &indexedStore{base: base{eng: eng, cfg: testConfig(), logger: zap.NewNop()}}, eng
}
