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

	"github.com/praxis-cloud/ragcore/internal/config"
	"github.com/praxis-cloud/ragcore/internal/db"
	dbPostgres "github.com/praxis-cloud/ragcore/internal/db/postgres"
	dbRedis "github.com/praxis-cloud/ragcore/internal/db/redis"
	"github.com/praxis-cloud/ragcore/internal/domain"
	"github.com/praxis-cloud/ragcore/internal/domain/split"
	"github.com/praxis-cloud/ragcore/internal/domain/usage/budget"
	logpkg "github.com/praxis-cloud/ragcore/internal/logger"
	"github.com/praxis-cloud/ragcore/internal/metrics"
	budgetrepo "github.com/praxis-cloud/ragcore/internal/repository/budget"
	chunkrepo "github.com/praxis-cloud/ragcore/internal/repository/chunk"
	httpapi "github.com/praxis-cloud/ragcore/internal/transport/http"
	openaiEmb "github.com/praxis-cloud/ragcore/internal/transport/openai"
	embeddinguc "github.com/praxis-cloud/ragcore/internal/usecase/embedding"
	healthuc "github.com/praxis-cloud/ragcore/internal/usecase/health"
	ingestuc "github.com/praxis-cloud/ragcore/internal/usecase/ingest"
	retrievaluc "github.com/praxis-cloud/ragcore/internal/usecase/retrieval"
	usageuc "github.com/praxis-cloud/ragcore/internal/usecase/usage"
	"github.com/praxis-cloud/ragcore/internal/version"
)

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

	logger.Info("Starting ragcore API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	// Chunk database
	store, err := dbPostgres.NewStore(dbPostgres.Config{
		DSN:   cfg.Database.DSN,
		Debug: cfg.Database.Debug,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("Database migration failed", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Usage counter store is optional: without it budgets reset on restart.
	// rueidis speaks to both Valkey and Redis, one driver serves either.
	var kv db.KV
	if len(cfg.UsageStore.Addrs) > 0 {
		kvStore, kvErr := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.UsageStore.Addrs,
			Username: cfg.UsageStore.Username,
			Password: cfg.UsageStore.Password,
			DB:       cfg.UsageStore.DB,
		})
		if kvErr != nil {
			logger.Fatal("Failed to create usage store", zap.Error(kvErr))
		}
		defer kvStore.Close()

		if err := kvStore.WaitForReady(ctx, time.Duration(cfg.UsageStore.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Usage store not ready", zap.Error(err))
		}
		logger.Info("Connected to usage store", zap.String("driver", cfg.UsageStore.Driver))
		kv = kvStore
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRAGMetrics()

	// Build the embedder decorator chain.
	// Take the first vectorizer config
	var vecCfg config.VectorizerConfig
	var provName string
	for _, vc := range cfg.Embedding.Vectorizers {
		vecCfg = vc
		provName = vc.Provider
		break
	}
	provCfg := cfg.Embedding.Providers[provName]

	// Single BudgetTracker shared across all embedders and usage service.
	var budgetTracker *embeddinguc.BudgetTracker
	budgetCfg := provCfg.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := budget.ActionWarn
		if budgetCfg.Action == "reject" {
			action = budget.ActionReject
		}
		budgetTracker = embeddinguc.NewBudgetTracker(
			provName, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		).WithKeyPrefix(cfg.Storage.KeyPrefix)
		if kv != nil {
			// Attach persistence so current counters survive restarts.
			budgetStore := budgetrepo.New(kv, 48*time.Hour, 62*24*time.Hour)
			budgetTracker.WithStore(ctx, budgetStore)
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker embeddinguc.BudgetChecker
	if budgetTracker != nil {
		budgetChecker = budgetTracker
	}

	docEmbedder := buildEmbedder(provName, provCfg, vecCfg, vecCfg.DocumentInstruction, budgetChecker, logger)
	queryEmbedder := buildEmbedder(provName, provCfg, vecCfg, vecCfg.QueryInstruction, budgetChecker, logger)
	logger.Info("Embedders created",
		zap.String("provider", provName),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	// Repositories: the store resolves document owners for the tenant check.
	chunkRepo := chunkrepo.New(store, store)

	// Use case services
	splitter := split.New(
		split.WithWindow(cfg.Ingest.SplitWindow),
		split.WithOverlap(cfg.Ingest.SplitOverlap),
	)
	ingestSvc := ingestuc.New(chunkRepo, docEmbedder, splitter).
		WithMaxBatchSize(cfg.Ingest.MaxBatchSize)
	retrievalSvc := retrievaluc.New(chunkRepo, queryEmbedder)

	// Usage service reads the shared budget tracker.
	var budgetReader usageuc.BudgetReader
	if budgetTracker != nil {
		budgetReader = budgetTracker
	}
	usageSvc := usageuc.New(budgetReader, provName)

	// Health service
	healthSvc := healthuc.New(store, kv, newEmbeddingHealthChecker(queryEmbedder))

	// HTTP API
	server := httpapi.NewServer(ingestSvc, retrievalSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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

// embedderChain is what the assembled decorator stack provides: one-off
// query embedding and whole-document batch embedding.
type embedderChain interface {
	domain.Embedder
	domain.BatchEmbedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
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

// buildEmbedder assembles the decorator chain: OpenAI -> Instrumented -> Instruction
func buildEmbedder(
	provName string,
	provCfg config.ProviderConfig,
	vecCfg config.VectorizerConfig,
	instruction string,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) embedderChain {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})

	// Instrumented (budget + logging)
	chain := embeddinguc.NewInstrumentedEmbedder(base, provName, vecCfg.Model, budget, logger)

	// Instruction prefix (outermost, so the provider sees the prefixed text)
	if instruction != "" {
		return domain.NewInstructionEmbedder(chain, instruction)
	}

	return chain
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
