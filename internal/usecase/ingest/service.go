// Package ingest drives the chunk, embed and store pipeline for raw
// document text.
package ingest

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/domain"
)

// Document is one raw-text source to ingest. Text extraction happens
// upstream; callers hand over plain text.
type Document struct {
	SourceID string // defaults to the filename without its extension
	Filename string
	Text     string
}

// Result reports what a single document contributed.
type Result struct {
	SourceID string
	Filename string
	Year     string
	Chunks   int
}

// RunReport summarizes a multi-document ingestion run.
type RunReport struct {
	Ingested []Result
	Skipped  int
}

// Service chunks, embeds and persists documents.
type Service struct {
	chunker Chunker
	embed   domain.Embedder
	store   RecordStore
	logger  *zap.Logger
}

// New creates an ingestion service.
func New(chunker Chunker, embed domain.Embedder, store RecordStore, logger *zap.Logger) *Service {
	return &Service{chunker: chunker, embed: embed, store: store, logger: logger}
}

// IngestDocument splits one document, embeds every kept chunk and persists
// the records as one batch. Any embedding or store failure aborts the whole
// document; there is no per-chunk partial success.
func (s *Service) IngestDocument(ctx context.Context, doc Document) (Result, error) {
	filename := domain.NormalizeFilename(doc.Filename)
	sourceID := doc.SourceID
	if sourceID == "" {
		sourceID = strings.TrimSuffix(filename, path.Ext(filename))
	}
	if sourceID == "" {
		return Result{}, fmt.Errorf("document has no source id or filename")
	}

	year := domain.ParseYear(filename)
	pieces := s.chunker.Split(doc.Text)

	res := Result{
		SourceID: sourceID,
		Filename: filename,
		Year:     year,
		Chunks:   len(pieces),
	}
	if len(pieces) == 0 {
		s.logger.Warn("document produced no substantive chunks",
			zap.String("source_id", sourceID), zap.String("filename", filename))
		return res, nil
	}

	records := make([]domain.Record, 0, len(pieces))
	for i, piece := range pieces {
		chunk := domain.Chunk{Content: piece, SourceID: sourceID, Index: i}

		emb, err := s.embed.Embed(ctx, chunk.Content)
		if err != nil {
			return Result{}, fmt.Errorf("embed chunk %s: %w", chunk.ID(), err)
		}

		records = append(records, domain.Record{
			ID:          chunk.ID(),
			Content:     chunk.Content,
			Filename:    filename,
			Year:        year,
			ChunkIndex:  chunk.Index,
			TotalChunks: len(pieces),
			Embedding:   emb.Embedding,
		})
	}

	if err := s.store.Store(ctx, records); err != nil {
		return Result{}, fmt.Errorf("store %s: %w", sourceID, err)
	}

	s.logger.Info("document ingested",
		zap.String("source_id", sourceID),
		zap.String("filename", filename),
		zap.String("year", year),
		zap.Int("chunks", len(records)),
	)
	return res, nil
}

// IngestAll processes documents sequentially. A failing document is logged
// and skipped; it never aborts the rest of the run.
func (s *Service) IngestAll(ctx context.Context, docs []Document) (RunReport, error) {
	var report RunReport
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("ingestion interrupted: %w", err)
		}

		res, err := s.IngestDocument(ctx, doc)
		if err != nil {
			report.Skipped++
			s.logger.Warn("skipping document",
				zap.String("filename", doc.Filename), zap.Error(err))
			continue
		}
		report.Ingested = append(report.Ingested, res)
	}
	return report, nil
}
