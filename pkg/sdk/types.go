package arkival

// Document is one raw-text source to ingest. Text extraction happens
// upstream; callers hand over plain text.
type Document struct {
	SourceID string // defaults to the filename without its extension
	Filename string
	Text     string
}

// IngestResult reports what a single document contributed.
type IngestResult struct {
	SourceID string
	Filename string
	Year     string
	Chunks   int
}

// IngestReport summarizes a multi-document ingestion run.
type IngestReport struct {
	Ingested []IngestResult
	Skipped  int
}

// SearchRequest describes one similarity query. Zero-valued fields mean
// "no constraint"; a zero Limit falls back to the server default.
type SearchRequest struct {
	Query         string
	Limit         int
	Year          string
	Filename      string
	MinSimilarity float64
}

// SearchResult is one ranked hit.
type SearchResult struct {
	ID          string
	Content     string
	Filename    string
	Year        string
	Similarity  float64
	ChunkIndex  int
	TotalChunks int
}

// YearCount is a per-year chunk count.
type YearCount struct {
	Year  string
	Count int
}

// FileCount is a per-filename chunk count.
type FileCount struct {
	Filename string
	Count    int
}

// Stats is a snapshot of corpus-level counts.
type Stats struct {
	TotalChunks     int
	DocumentsByYear []YearCount
	DocumentsByFile []FileCount
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component name to "ok"/"error"
}
