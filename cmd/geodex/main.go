package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/config"
	dbRedis "github.com/meridianwatch/geodex/internal/db/redis"
	"github.com/meridianwatch/geodex/internal/domain"
	"github.com/meridianwatch/geodex/internal/domain/credibility"
	"github.com/meridianwatch/geodex/internal/domain/search/strategy"
	logpkg "github.com/meridianwatch/geodex/internal/logger"
	"github.com/meridianwatch/geodex/internal/metrics"
	chunkrepo "github.com/meridianwatch/geodex/internal/repository/chunk"
	"github.com/meridianwatch/geodex/internal/retry"
	chiTransport "github.com/meridianwatch/geodex/internal/transport/chi"
	openaiEmb "github.com/meridianwatch/geodex/internal/transport/openai"
	"github.com/meridianwatch/geodex/internal/transport/websearch"
	embeddinguc "github.com/meridianwatch/geodex/internal/usecase/embedding"
	healthuc "github.com/meridianwatch/geodex/internal/usecase/health"
	ingestuc "github.com/meridianwatch/geodex/internal/usecase/ingest"
	searchuc "github.com/meridianwatch/geodex/internal/usecase/search"
	"github.com/meridianwatch/geodex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting geodex server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("collection", cfg.Index.Collection),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Repository + index
	repo := chunkrepo.New(store, cfg.Index.Collection, cfg.Embedding.Dimensions).
		WithHNSW(chunkrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure index", zap.Error(err))
	}

	// Embedder chain: OpenAI -> cached -> batch service
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Retry:      retryPolicy(cfg.Embedding),
		Logger:     logger,
	})
	cache := embeddinguc.NewCached(base, cfg.Embedding.CacheSize, metrics.EmbeddingCacheTotal)
	embSvc := embeddinguc.NewService(cache, cfg.Embedding.BatchSize, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Web search is optional; without it, web-consulting strategies degrade
	// to index-only results.
	var web domain.WebSearcher
	if cfg.WebSearch.BaseURL != "" {
		web = websearch.NewClient(websearch.Config{
			BaseURL:           cfg.WebSearch.BaseURL,
			QueryParam:        cfg.WebSearch.QueryParam,
			Timeout:           time.Duration(cfg.WebSearch.TimeoutSec) * time.Second,
			RequestsPerSecond: cfg.WebSearch.RequestsPerSecond,
			FragmentLength:    cfg.WebSearch.FragmentLength,
			Logger:            logger,
		})
		logger.Info("Web search enabled", zap.String("base_url", cfg.WebSearch.BaseURL))
	}

	evaluator := credibility.NewEvaluator(
		withDefault(cfg.Credibility.TrustedDomains, credibility.DefaultTrustedDomains),
		withDefault(cfg.Credibility.SuspiciousDomains, credibility.DefaultSuspiciousDomains),
	)

	splitter := ingestuc.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	ingestSvc := ingestuc.New(repo, embSvc, splitter, logger)
	searchSvc := searchuc.New(repo, web, embSvc, evaluator, logger).
		WithDefaults(searchuc.Defaults{
			NResults:        cfg.Search.NResults,
			Strategy:        strategy.Strategy(cfg.Search.DefaultStrategy),
			MinRelevance:    cfg.Search.MinRelevance,
			WebResultsRatio: cfg.Search.WebResultsRatio,
		})
	healthSvc := healthuc.New(store, base)

	server := chiTransport.NewServer(searchSvc, ingestSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(metrics.Middleware())
	r.Handle("/metrics", promhttp.Handler())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func retryPolicy(cfg config.EmbeddingConfig) retry.Policy {
	p := retry.Default()
	if cfg.RetryMaxAttempts > 0 {
		p.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryBaseDelaySec > 0 {
		p.BaseDelay = time.Duration(cfg.RetryBaseDelaySec) * time.Second
	}
	if cfg.RetryMaxDelaySec > 0 {
		p.MaxDelay = time.Duration(cfg.RetryMaxDelaySec) * time.Second
	}
	return p
}

func withDefault(list, fallback []string) []string {
	if len(list) == 0 {
		return fallback
	}
	return list
}
