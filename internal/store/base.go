package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/db"
	"github.com/arkival/arkival/internal/domain"
)

// base carries the write path, statistics and deletion shared by both
// backends; the backends differ only in Initialize and Search.
type base struct {
	eng       engine
	cfg       Config
	logger    *zap.Logger
	closeOnce sync.Once
}

func (b *base) recordKey(id string) string { return b.cfg.KeyPrefix + "doc:" + id }
func (b *base) indexName() string          { return b.cfg.KeyPrefix + "idx" }
func (b *base) recordPrefix() string       { return b.cfg.KeyPrefix + "doc:" }
func (b *base) idsKey() string             { return b.cfg.KeyPrefix + "ids" }
func (b *base) yearKey(year string) string { return b.cfg.KeyPrefix + "year:" + year }
func (b *base) fileKey(name string) string { return b.cfg.KeyPrefix + "file:" + name }

// Store persists the batch inside one engine transaction: per record an
// upsert of the data fields, an HSETNX for created_at, and memberships in
// the ids/year/filename sets. Any failure rolls the whole batch back.
func (b *base) Store(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	// Reject dimension corruption before touching the engine.
	for i := range records {
		if err := records[i].Validate(b.cfg.Dimension); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	ops := make([]db.BatchOp, 0, len(records)*5)
	for i := range records {
		r := &records[i]
		key := b.recordKey(r.ID)
		ops = append(ops,
			db.BatchOp{Kind: db.BatchHSet, Key: key, Fields: recordFields(r, now)},
			db.BatchOp{Kind: db.BatchHSetNX, Key: key, Field: fieldCreatedAt, Value: now.Format(time.RFC3339Nano)},
			db.BatchOp{Kind: db.BatchSAdd, Key: b.idsKey(), Members: []string{r.ID}},
			db.BatchOp{Kind: db.BatchSAdd, Key: b.yearKey(r.Year), Members: []string{r.ID}},
			db.BatchOp{Kind: db.BatchSAdd, Key: b.fileKey(r.Filename), Members: []string{r.ID}},
		)
	}

	if err := b.eng.ExecBatch(ctx, ops); err != nil {
		return fmt.Errorf("store %d records: %w: %w", len(records), err, domain.ErrBatchWriteFailed)
	}

	b.logger.Debug("stored record batch", zap.Int("records", len(records)))
	return nil
}

// Stats reads the membership sets: total from the ids set, per-year and
// per-file counts from the year:/file: namespaces.
func (b *base) Stats(ctx context.Context) (domain.Stats, error) {
	total, err := b.eng.SCard(ctx, b.idsKey())
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count records: %w", err)
	}

	years, err := b.countNamespace(ctx, b.cfg.KeyPrefix+"year:")
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count by year: %w", err)
	}
	files, err := b.countNamespace(ctx, b.cfg.KeyPrefix+"file:")
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count by filename: %w", err)
	}

	stats := domain.Stats{TotalDocuments: total}

	yearNames := sortedKeys(years)
	// years descending
	sort.Sort(sort.Reverse(sort.StringSlice(yearNames)))
	for _, y := range yearNames {
		stats.DocumentsByYear = append(stats.DocumentsByYear, domain.YearCount{Year: y, Count: years[y]})
	}

	fileNames := sortedKeys(files)
	// counts descending, ties by name for determinism
	sort.SliceStable(fileNames, func(i, j int) bool {
		if files[fileNames[i]] != files[fileNames[j]] {
			return files[fileNames[i]] > files[fileNames[j]]
		}
		return fileNames[i] < fileNames[j]
	})
	for _, f := range fileNames {
		stats.DocumentsByFile = append(stats.DocumentsByFile, domain.FileCount{Filename: f, Count: files[f]})
	}

	return stats, nil
}

func (b *base) countNamespace(ctx context.Context, prefix string) (map[string]int, error) {
	keys, err := b.eng.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(keys))
	for _, key := range keys {
		n, err := b.eng.SCard(ctx, key)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			counts[strings.TrimPrefix(key, prefix)] = n
		}
	}
	return counts, nil
}

// Delete removes one record and its set memberships atomically. Deleting a
// missing record is a no-op.
func (b *base) Delete(ctx context.Context, id string) error {
	key := b.recordKey(id)

	fields, err := b.eng.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("load record %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil
	}

	ops := []db.BatchOp{
		{Kind: db.BatchDel, Key: key},
		{Kind: db.BatchSRem, Key: b.idsKey(), Members: []string{id}},
	}
	if year := fields[fieldYear]; year != "" {
		ops = append(ops, db.BatchOp{Kind: db.BatchSRem, Key: b.yearKey(year), Members: []string{id}})
	}
	if name := fields[fieldFilename]; name != "" {
		ops = append(ops, db.BatchOp{Kind: db.BatchSRem, Key: b.fileKey(name), Members: []string{id}})
	}

	if err := b.eng.ExecBatch(ctx, ops); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// Close releases the engine client. Safe to call more than once.
func (b *base) Close() {
	b.closeOnce.Do(b.eng.Close)
}

// filterSetKeys maps a metadata filter onto the membership sets whose
// intersection is the candidate id list.
func (b *base) filterSetKeys(f domain.SearchFilter) []string {
	var keys []string
	if f.Year != "" {
		keys = append(keys, b.yearKey(f.Year))
	}
	if f.Filename != "" {
		keys = append(keys, b.fileKey(f.Filename))
	}
	if len(keys) == 0 {
		keys = append(keys, b.idsKey())
	}
	return keys
}

func (b *base) validateQuery(queryVector []float32, limit int) error {
	if len(queryVector) != b.cfg.Dimension {
		return fmt.Errorf("query vector has %d dimensions, want %d: %w",
			len(queryVector), b.cfg.Dimension, domain.ErrDimensionMismatch)
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
