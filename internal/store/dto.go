package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arkival/arkival/internal/domain"
	"github.com/arkival/arkival/internal/vector"
)

// Hash field names of the persisted record schema.
const (
	fieldContent     = "content"
	fieldFilename    = "filename"
	fieldYear        = "year"
	fieldChunkIndex  = "chunk_index"
	fieldTotalChunks = "total_chunks"
	fieldSource      = "source"
	fieldEmbedding   = "embedding"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// scoreField is the alias FT.SEARCH uses for the KNN distance of the
// embedding vector field.
const scoreField = "__embedding_score"

// recordFields flattens a record into hash fields. created_at is written
// separately via HSETNX so upserts keep the original insert time while
// content, embedding and updated_at are replaced together.
func recordFields(r *domain.Record, now time.Time) map[string]string {
	return map[string]string{
		fieldContent:     r.Content,
		fieldFilename:    r.Filename,
		fieldYear:        r.Year,
		fieldChunkIndex:  strconv.Itoa(r.ChunkIndex),
		fieldTotalChunks: strconv.Itoa(r.TotalChunks),
		fieldSource:      domain.SourceDefault,
		fieldEmbedding:   string(vector.Encode(r.Embedding)),
		fieldUpdatedAt:   now.Format(time.RFC3339Nano),
	}
}

// resultFromFields projects hash fields into a SearchResult.
func resultFromFields(id string, fields map[string]string, similarity float64) domain.SearchResult {
	return domain.SearchResult{
		ID:          id,
		Content:     fields[fieldContent],
		Filename:    fields[fieldFilename],
		Year:        fields[fieldYear],
		Similarity:  similarity,
		ChunkIndex:  atoiOr(fields[fieldChunkIndex], 0),
		TotalChunks: atoiOr(fields[fieldTotalChunks], 1),
	}
}

// embeddingFromFields decodes the stored vector blob.
func embeddingFromFields(id string, fields map[string]string) ([]float32, error) {
	blob, ok := fields[fieldEmbedding]
	if !ok {
		return nil, fmt.Errorf("record %s has no embedding field", id)
	}
	v, err := vector.Decode([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}
	return v, nil
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
