package arkival

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/chunker"
	dbRedis "github.com/arkival/arkival/internal/db/redis"
	"github.com/arkival/arkival/internal/domain"
	"github.com/arkival/arkival/internal/store"
	openaiT "github.com/arkival/arkival/internal/transport/openai"
	healthuc "github.com/arkival/arkival/internal/usecase/health"
	ingestuc "github.com/arkival/arkival/internal/usecase/ingest"
	searchuc "github.com/arkival/arkival/internal/usecase/search"
	statsuc "github.com/arkival/arkival/internal/usecase/stats"
)

const defaultReadinessTimeout = 10 * time.Second

const defaultOpenAIModel = "text-embedding-3-small"

// Internal interfaces so tests can substitute the services.
type ingestUseCase interface {
	IngestDocument(ctx context.Context, doc ingestuc.Document) (ingestuc.Result, error)
	IngestAll(ctx context.Context, docs []ingestuc.Document) (ingestuc.RunReport, error)
}

type searchUseCase interface {
	SearchByText(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.SearchResult, error)
}

type statsUseCase interface {
	Collect(ctx context.Context) (domain.Stats, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the arkival SDK entry point.
type Client struct {
	engine    *dbRedis.Store
	records   store.Store
	ingestSvc ingestUseCase
	searchSvc searchUseCase
	statsSvc  statsUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates an arkival Client and connects to the database. The provided
// context bounds the initial readiness check and schema setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("arkival: database address required (use WithRedis)")
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("arkival: create store: %w", err)
	}

	if err := engine.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		engine.Close()
		return nil, fmt.Errorf("arkival: database not ready: %w", err)
	}

	records, err := store.Open(ctx, engine, store.Config{
		KeyPrefix: cfg.keyPrefix,
		Dimension: cfg.dimensions,
	}, logger)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("arkival: open record store: %w", err)
	}
	if err := records.Initialize(ctx); err != nil {
		engine.Close()
		return nil, fmt.Errorf("arkival: initialize record store: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		engine.Close()
		return nil, err
	}

	return wireClient(engine, records, cfg, logger, obs)
}

func wireClient(
	engine *dbRedis.Store, records store.Store,
	cfg *clientConfig, logger *zap.Logger, obs *observer,
) (*Client, error) {
	emb, checker := buildEmbedder(cfg, logger)

	ch, err := chunker.New(cfg.chunkSize, cfg.chunkOverlap)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("arkival: chunker: %w", err)
	}

	return &Client{
		engine:    engine,
		records:   records,
		ingestSvc: ingestuc.New(ch, emb, records, logger),
		searchSvc: searchuc.New(emb, records, cfg.maxLimit),
		statsSvc:  statsuc.New(records),
		healthSvc: healthuc.New(engine, checker),
		obs:       obs,
	}, nil
}

func buildEmbedder(cfg *clientConfig, logger *zap.Logger) (domain.Embedder, domain.HealthChecker) {
	if cfg.embedder != nil {
		return &embedderAdapter{inner: cfg.embedder}, nil
	}
	if cfg.openaiKey != "" {
		model := cfg.openaiModel
		if model == "" {
			model = defaultOpenAIModel
		}
		e := openaiT.NewEmbedder(&openaiT.Config{
			APIKey:     cfg.openaiKey,
			Model:      model,
			Dimensions: cfg.dimensions,
			Logger:     logger,
		})
		return e, e
	}
	return noopEmbedder{}, nil
}

// Close releases the database connection.
func (c *Client) Close() {
	if c.engine != nil {
		c.engine.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Mode reports which similarity backend the client selected at connect time:
// "indexed" or "scalar".
func (c *Client) Mode() string {
	return string(c.records.Mode())
}

// IngestDocument chunks, embeds and persists one document. Any embedding or
// store failure aborts the whole document.
func (c *Client) IngestDocument(ctx context.Context, doc Document) (res IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest.document", start, err) }()

	r, err := c.ingestSvc.IngestDocument(ctx, ingestuc.Document{
		SourceID: doc.SourceID,
		Filename: doc.Filename,
		Text:     doc.Text,
	})
	if err != nil {
		return IngestResult{}, err
	}
	return toIngestResult(r), nil
}

// IngestAll processes documents sequentially. A failing document is counted
// as skipped and never aborts the rest of the run.
func (c *Client) IngestAll(ctx context.Context, docs []Document) (report IngestReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest.all", start, err) }()

	in := make([]ingestuc.Document, len(docs))
	for i, d := range docs {
		in[i] = ingestuc.Document{SourceID: d.SourceID, Filename: d.Filename, Text: d.Text}
	}

	run, err := c.ingestSvc.IngestAll(ctx, in)
	if err != nil {
		return IngestReport{}, err
	}

	report.Skipped = run.Skipped
	report.Ingested = make([]IngestResult, len(run.Ingested))
	for i, r := range run.Ingested {
		report.Ingested[i] = toIngestResult(r)
	}
	return report, nil
}

// Search embeds the query and returns ranked hits.
func (c *Client) Search(ctx context.Context, req SearchRequest) (hits []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	results, err := c.searchSvc.SearchByText(ctx, req.Query, req.Limit, domain.SearchFilter{
		Year:          req.Year,
		Filename:      req.Filename,
		MinSimilarity: req.MinSimilarity,
	})
	if err != nil {
		return nil, err
	}

	hits = make([]SearchResult, len(results))
	for i, r := range results {
		hits[i] = SearchResult{
			ID:          r.ID,
			Content:     r.Content,
			Filename:    r.Filename,
			Year:        r.Year,
			Similarity:  r.Similarity,
			ChunkIndex:  r.ChunkIndex,
			TotalChunks: r.TotalChunks,
		}
	}
	return hits, nil
}

// Stats returns corpus-level counts.
func (c *Client) Stats(ctx context.Context) (st Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	s, err := c.statsSvc.Collect(ctx)
	if err != nil {
		return Stats{}, err
	}

	st.TotalChunks = s.TotalDocuments
	st.DocumentsByYear = make([]YearCount, len(s.DocumentsByYear))
	for i, y := range s.DocumentsByYear {
		st.DocumentsByYear[i] = YearCount{Year: y.Year, Count: y.Count}
	}
	st.DocumentsByFile = make([]FileCount, len(s.DocumentsByFile))
	for i, f := range s.DocumentsByFile {
		st.DocumentsByFile[i] = FileCount{Filename: f.Filename, Count: f.Count}
	}
	return st, nil
}

// Health checks the health of all wired components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

func toIngestResult(r ingestuc.Result) IngestResult {
	return IngestResult{
		SourceID: r.SourceID,
		Filename: r.Filename,
		Year:     r.Year,
		Chunks:   r.Chunks,
	}
}
