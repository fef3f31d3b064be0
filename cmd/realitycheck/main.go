package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/chunker"
	"github.com/kailas-cloud/realitycheck/internal/config"
	"github.com/kailas-cloud/realitycheck/internal/db"
	dbRedis "github.com/kailas-cloud/realitycheck/internal/db/redis"
	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/index"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
	logpkg "github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
	budgetrepo "github.com/kailas-cloud/realitycheck/internal/repository/budget"
	"github.com/kailas-cloud/realitycheck/internal/repository/embcache"
	snapshotrepo "github.com/kailas-cloud/realitycheck/internal/repository/snapshot"
	chiTransport "github.com/kailas-cloud/realitycheck/internal/transport/chi"
	hfEmb "github.com/kailas-cloud/realitycheck/internal/transport/huggingface"
	openaiProv "github.com/kailas-cloud/realitycheck/internal/transport/openai"
	analyzeuc "github.com/kailas-cloud/realitycheck/internal/usecase/analyze"
	askuc "github.com/kailas-cloud/realitycheck/internal/usecase/ask"
	classifyuc "github.com/kailas-cloud/realitycheck/internal/usecase/classify"
	corpusuc "github.com/kailas-cloud/realitycheck/internal/usecase/corpus"
	embeddinguc "github.com/kailas-cloud/realitycheck/internal/usecase/embedding"
	explainuc "github.com/kailas-cloud/realitycheck/internal/usecase/explain"
	generateuc "github.com/kailas-cloud/realitycheck/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/realitycheck/internal/usecase/health"
	"github.com/kailas-cloud/realitycheck/internal/usecase/llm"
	retrieveuc "github.com/kailas-cloud/realitycheck/internal/usecase/retrieve"
	usageuc "github.com/kailas-cloud/realitycheck/internal/usecase/usage"
	"github.com/kailas-cloud/realitycheck/internal/version"
)

const llmProvider = "llm"

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting realitycheck API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("db_enabled", cfg.Database.Enabled),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterIndexMetrics()

	if err := ingest.SetLicense(cfg.Ingest.UnidocLicenseKey); err != nil {
		logger.Fatal("Failed to activate document parser license", zap.Error(err))
	}

	ctx := context.Background()

	// The KV store is optional: without it caches, budgets and uploads are in-process only.
	var store db.Store
	if cfg.Database.Enabled {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Database.Addrs,
			Password:  cfg.Database.Password,
			KeyPrefix: cfg.Database.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
		store = s
	}

	// Single BudgetTracker shared by the embedder chain and the usage service.
	var budget *embeddinguc.BudgetTracker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budget = embeddinguc.NewBudgetTracker(
			cfg.Embedding.Provider, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		if store != nil {
			budget.WithStore(ctx, budgetrepo.New(store))
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker embeddinguc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	provider, embedder, err := buildEmbedder(cfg.Embedding, store, budgetChecker, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	generator, err := buildGenerator(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}
	logger.Info("Generator created", zap.Strings("models", cfg.LLM.Models))

	// Corpora
	evidence := index.NewHolder()
	notes := index.NewHolder()
	extractor := ingest.NewExtractor(ingest.NoopOCR{}, logger)

	var snapshots corpusuc.SnapshotStore
	if store != nil {
		snapshots = snapshotrepo.New(store)
	}

	corpusSvc := corpusuc.New(
		embedder, evidence, notes,
		chunker.New(cfg.RAG.ChunkTargetTokens, cfg.RAG.ChunkOverlapTokens),
		extractor, snapshots,
		corpusuc.Options{
			Dim:          cfg.Embedding.Dimensions,
			Workers:      cfg.RAG.EmbedWorkers,
			MaxFileChars: cfg.RAG.MaxFileChars,
		},
	)

	// A failed seed build leaves the service up with an empty evidence index (health degraded).
	if sum, err := corpusSvc.BuildIndex(ctx, corpusuc.SeedArticles()); err != nil {
		logger.Warn("Evidence index build failed", zap.Error(err))
	} else {
		logger.Info("Evidence index built", zap.Int("entries", sum.Entries))
	}
	if restored, err := corpusSvc.Restore(ctx); err != nil {
		logger.Warn("Notes snapshot restore failed", zap.Error(err))
	} else if restored {
		logger.Info("Notes corpus restored from snapshot")
	}

	// Use cases
	classifySvc := classifyuc.New(generator, classifyuc.Options{
		MaxInputChars: cfg.RAG.MaxInputChars,
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   cfg.LLM.Temperature,
	})
	retrieveSvc := retrieveuc.New(evidence, embedder)
	explainSvc := explainuc.New(generator, explainuc.Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	analyzeSvc := analyzeuc.New(classifySvc, retrieveSvc, explainSvc, extractor, analyzeuc.Options{
		TopK:          cfg.RAG.EvidenceTopK,
		MaxInputChars: cfg.RAG.MaxInputChars,
	})
	askSvc := askuc.New(notes, embedder, generator, askuc.Options{
		TopK:            cfg.RAG.TopK,
		MaxContextChars: cfg.RAG.MaxContextChars,
		MaxTokens:       cfg.RAG.AskMaxTokens,
		Temperature:     cfg.LLM.Temperature,
	})
	generateSvc := generateuc.New(notes, generator, generateuc.Options{
		MaxContextChars: cfg.RAG.MaxContextChars,
		MaxTokens:       cfg.RAG.GenerateMaxTokens,
		Temperature:     cfg.LLM.Temperature,
	})
	usageSvc := usageuc.New(budgetReader, cfg.Embedding.Provider)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, newEmbeddingHealthChecker(provider), evidence, notes)

	server := chiTransport.NewServer(chiTransport.Services{
		Analyze:  analyzeSvc,
		Classify: classifySvc,
		Retrieve: retrieveSvc,
		Notes:    corpusSvc,
		Ask:      askSvc,
		Generate: generateSvc,
		Usage:    usageSvc,
		Health:   healthSvc,
	}, chiTransport.Options{
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		DefaultK:       cfg.RAG.EvidenceTopK,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
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

// embeddingHealthChecker checks the raw provider when it supports health checks.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain:
// provider -> RateLimited -> Normalizing -> Cached -> Instrumented.
// It returns the raw provider too, for health checks.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	store db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) (domain.Embedder, domain.Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiProv.NewEmbedder(&openaiProv.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    timeout,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	default:
		hf, err := hfEmb.NewEmbedder(&hfEmb.Config{
			URL:     cfg.URL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		base = hf
	}

	// Rate limit sits next to the provider so cache hits never wait.
	embedder := embeddinguc.NewRateLimitedEmbedder(base, cfg.RatePerSec, cfg.Burst)

	normalizing, err := embeddinguc.NewNormalizingEmbedder(embedder, cfg.Dimensions, cfg.MaxInputChars)
	if err != nil {
		return nil, nil, err
	}

	var kv embcacheStore
	if store != nil {
		kv = store
	}
	cached, err := embcache.New(normalizing, kv, embcache.Options{
		Size:      cfg.CacheSize,
		Namespace: cacheNamespace(cfg),
		TTL:       time.Duration(cfg.CacheTTLSec) * time.Second,
	}, metrics.EmbeddingCacheTotal, logger)
	if err != nil {
		return nil, nil, err
	}

	return base, embeddinguc.NewInstrumentedEmbedder(cached, cfg.Provider, cfg.Model, budget, logger), nil
}

// cacheNamespace keys cached vectors by everything that changes them. A model
// serving shortened vectors must not hit entries of another size.
func cacheNamespace(cfg config.EmbeddingConfig) string {
	return fmt.Sprintf("%s:%s:%d", cfg.Provider, cfg.Model, cfg.Dimensions)
}

// embcacheStore is the KV subset the embedding cache needs.
type embcacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// buildGenerator assembles one generator per model -> Fallback -> RateLimited.
func buildGenerator(cfg config.LLMConfig, logger *zap.Logger) (domain.Generator, error) {
	models := make([]llm.NamedGenerator, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		models = append(models, openaiProv.NewGenerator(&openaiProv.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    m,
			Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
			Provider: llmProvider,
			Logger:   logger,
		}))
	}
	fallback, err := llm.NewFallbackGenerator(logger, models...)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedGenerator(fallback, cfg.RatePerSec, cfg.Burst), nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request. Usage headers are set by the handlers.
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("embedding_tokens", ww.Header().Get("X-Embedding-Tokens")),
				zap.String("model_calls", ww.Header().Get("X-Model-Calls")),
			)
		})
	}
}
