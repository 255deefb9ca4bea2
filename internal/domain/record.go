package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceDefault is the constant stored in every record's source column.
const SourceDefault = "arkival"

// YearUnknown is stored when no 4-digit year can be parsed from a filename.
const YearUnknown = "unknown"

// Chunk is a pre-embedding slice of a source document.
type Chunk struct {
	Content  string
	SourceID string
	Index    int
}

// ID derives the globally unique record identifier. Re-submitting the same
// SourceID intentionally overwrites earlier records chunk by chunk.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s_chunk_%d", c.SourceID, c.Index)
}

// Record is a persisted chunk with its embedding and descriptive metadata.
type Record struct {
	ID          string
	Content     string
	Filename    string
	Year        string
	ChunkIndex  int
	TotalChunks int
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the record against the configured embedding dimension.
func (r *Record) Validate(dim int) error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if len(r.Embedding) != dim {
		return fmt.Errorf("record %s: got %d dimensions, want %d: %w",
			r.ID, len(r.Embedding), dim, ErrDimensionMismatch)
	}
	return nil
}

// SearchFilter narrows a similarity search. Zero values mean "no constraint".
type SearchFilter struct {
	Year          string
	Filename      string
	MinSimilarity float64 // inclusive threshold, applied before limit truncation
}

// IsEmpty reports whether no metadata predicate is set.
func (f SearchFilter) IsEmpty() bool {
	return f.Year == "" && f.Filename == ""
}

// SearchResult is a read-only projection of a ranked hit.
type SearchResult struct {
	ID          string
	Content     string
	Filename    string
	Year        string
	Similarity  float64
	ChunkIndex  int
	TotalChunks int
}

// YearCount is a per-year record count.
type YearCount struct {
	Year  string
	Count int
}

// FileCount is a per-filename record count.
type FileCount struct {
	Filename string
	Count    int
}

// Stats is a consistent snapshot of corpus-level counts.
type Stats struct {
	TotalDocuments  int
	DocumentsByYear []YearCount // years descending
	DocumentsByFile []FileCount // counts descending, ties by name
}

// ParseYear extracts the first 4-digit year token (1900 to 2099) from a
// filename, or YearUnknown when none is present.
func ParseYear(filename string) string {
	for i := 0; i+4 <= len(filename); i++ {
		if !isYearStart(filename[i]) {
			continue
		}
		if isDigit(filename[i+1]) && isDigit(filename[i+2]) && isDigit(filename[i+3]) {
			// require the token not to extend into a longer digit run
			if i > 0 && isDigit(filename[i-1]) {
				continue
			}
			if i+4 < len(filename) && isDigit(filename[i+4]) {
				continue
			}
			century := filename[i : i+2]
			if century == "19" || century == "20" {
				return filename[i : i+4]
			}
		}
	}
	return YearUnknown
}

func isYearStart(b byte) bool { return b == '1' || b == '2' }
func isDigit(b byte) bool     { return b >= '0' && b <= '9' }

// NormalizeFilename strips directories so metadata filters match on the
// base name regardless of how the document was supplied.
func NormalizeFilename(name string) string {
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
