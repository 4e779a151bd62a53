// Package geodex is the embedded hybrid retrieval engine: document ingestion
// into a Redis vector index, credibility-scored hybrid search over the index
// and live web results.
package geodex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/db"
	dbRedis "github.com/meridianwatch/geodex/internal/db/redis"
	"github.com/meridianwatch/geodex/internal/domain"
	"github.com/meridianwatch/geodex/internal/domain/credibility"
	chunkrepo "github.com/meridianwatch/geodex/internal/repository/chunk"
	openaiEmb "github.com/meridianwatch/geodex/internal/transport/openai"
	"github.com/meridianwatch/geodex/internal/transport/websearch"
	embeddinguc "github.com/meridianwatch/geodex/internal/usecase/embedding"
	healthuc "github.com/meridianwatch/geodex/internal/usecase/health"
	ingestuc "github.com/meridianwatch/geodex/internal/usecase/ingest"
	searchuc "github.com/meridianwatch/geodex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the geodex entry point. Safe for concurrent use.
type Client struct {
	store     db.Store
	cache     *embeddinguc.CachedEmbedder
	web       *websearch.Client
	ingestSvc *ingestuc.Service
	searchSvc *searchuc.Service
	healthSvc *healthuc.Service

	searchDefaults searchDefaults
}

// searchDefaults are client-level overrides applied to search calls that
// leave the corresponding option at its zero value.
type searchDefaults struct {
	nResults        int
	minRelevance    float64
	webResultsRatio float64
}

// New creates a Client, connects to the vector store and ensures the
// collection index exists.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("geodex: database address required (use WithRedis)")
	}
	if cfg.openAIKey == "" {
		return nil, errors.New("geodex: embedding API key required (use WithOpenAI)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("geodex: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("geodex: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	repo := chunkrepo.New(store, cfg.collection, cfg.dimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		repo = repo.WithHNSW(chunkrepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct})
	}
	if err := repo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("geodex: ensure index: %w", err)
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.openAIKey,
		BaseURL:    cfg.openAIBaseURL,
		Model:      cfg.model,
		Dimensions: cfg.dimensions,
		Retry:      cfg.retryPolicy,
		Logger:     cfg.logger,
	})
	cache := embeddinguc.NewCached(base, cfg.cacheSize, nil)
	embSvc := embeddinguc.NewService(cache, cfg.batchSize, cfg.logger)

	var webClient *websearch.Client
	var web domain.WebSearcher
	if cfg.webSearchURL != "" {
		webClient = websearch.NewClient(websearch.Config{
			BaseURL:           cfg.webSearchURL,
			QueryParam:        cfg.webQueryParam,
			Timeout:           cfg.webTimeout,
			RequestsPerSecond: cfg.webRatePerSecond,
			FragmentLength:    cfg.fragmentLength,
			Logger:            cfg.logger,
		})
		web = webClient
	}

	trusted := cfg.trustedDomains
	if trusted == nil {
		trusted = credibility.DefaultTrustedDomains
	}
	suspicious := cfg.suspiciousDomains
	if suspicious == nil {
		suspicious = credibility.DefaultSuspiciousDomains
	}
	evaluator := credibility.NewEvaluator(trusted, suspicious)

	splitter := ingestuc.NewSplitter(cfg.chunkSize, cfg.chunkOverlap)
	ingestSvc := ingestuc.New(repo, embSvc, splitter, cfg.logger)
	searchSvc := searchuc.New(repo, web, embSvc, evaluator, cfg.logger)
	healthSvc := healthuc.New(store, base)

	return &Client{
		store:     store,
		cache:     cache,
		web:       webClient,
		ingestSvc: ingestSvc,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
		searchDefaults: searchDefaults{
			nResults:        cfg.nResults,
			minRelevance:    cfg.minRelevance,
			webResultsRatio: cfg.webResultsRatio,
		},
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks vector store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health reports component availability.
func (c *Client) Health(ctx context.Context) HealthReport {
	r := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthReport{Status: string(r.Status), Checks: checks}
}

// HealthReport aggregates component health checks.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
