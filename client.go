package ragcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/praxis-cloud/ragcore/internal/db"
	dbPostgres "github.com/praxis-cloud/ragcore/internal/db/postgres"
	dbRedis "github.com/praxis-cloud/ragcore/internal/db/redis"
	"github.com/praxis-cloud/ragcore/internal/domain"
	"github.com/praxis-cloud/ragcore/internal/domain/split"
	domusage "github.com/praxis-cloud/ragcore/internal/domain/usage"
	"github.com/praxis-cloud/ragcore/internal/domain/usage/budget"
	"github.com/praxis-cloud/ragcore/internal/metrics"
	budgetrepo "github.com/praxis-cloud/ragcore/internal/repository/budget"
	chunkrepo "github.com/praxis-cloud/ragcore/internal/repository/chunk"
	documentrepo "github.com/praxis-cloud/ragcore/internal/repository/document"
	openaiEmb "github.com/praxis-cloud/ragcore/internal/transport/openai"
	embeddinguc "github.com/praxis-cloud/ragcore/internal/usecase/embedding"
	healthuc "github.com/praxis-cloud/ragcore/internal/usecase/health"
	ingestuc "github.com/praxis-cloud/ragcore/internal/usecase/ingest"
	retrievaluc "github.com/praxis-cloud/ragcore/internal/usecase/retrieval"
	usageuc "github.com/praxis-cloud/ragcore/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the embedded ragcore entry point. Platform services that do not
// want to talk to the HTTP API wire the subsystem in-process through it.
type Client struct {
	store db.Store
	kv    db.KV

	docs         *documentrepo.Repo
	ingestSvc    *ingestuc.Service
	retrievalSvc *retrievaluc.Service
	usageSvc     *usageuc.Service
	healthSvc    *healthuc.Service
}

// New creates a ragcore Client, connects to the chunk database and prepares
// the schema. The provided context bounds the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		provider:         "openai",
		window:           split.DefaultWindow,
		overlap:          split.DefaultOverlap,
		migrate:          true,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if cfg.dsn == "" {
		return nil, errors.New("ragcore: database DSN required (use WithPostgres)")
	}

	store, err := dbPostgres.NewStore(dbPostgres.Config{
		DSN:   cfg.dsn,
		Debug: cfg.debug,
	})
	if err != nil {
		return nil, fmt.Errorf("ragcore: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ragcore: database not ready: %w", err)
	}
	if cfg.migrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ragcore: migrate: %w", err)
		}
	}

	kv, err := createUsageStore(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRAGMetrics()

	return wireClient(ctx, store, kv, cfg), nil
}

// createUsageStore connects the optional usage counter store.
func createUsageStore(ctx context.Context, cfg *clientConfig) (db.KV, error) {
	if len(cfg.usageAddrs) == 0 {
		return nil, nil
	}
	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.usageAddrs,
		Password: cfg.usagePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("ragcore: create usage store: %w", err)
	}
	if err := kv.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		kv.Close()
		return nil, fmt.Errorf("ragcore: usage store not ready: %w", err)
	}
	return kv, nil
}

func wireClient(ctx context.Context, store db.Store, kv db.KV, cfg *clientConfig) *Client {
	tracker := buildBudgetTracker(ctx, kv, cfg)

	// Pass nil interface (not typed nil pointer) when budget is off.
	var checker embeddinguc.BudgetChecker
	var reader usageuc.BudgetReader
	if tracker != nil {
		checker = tracker
		reader = tracker
	}

	docEmb := buildEmbedder(cfg, cfg.docInstruction, checker)
	queryEmb := buildEmbedder(cfg, cfg.queryInstruction, checker)

	chunkRepo := chunkrepo.New(store, store)
	docRepo := documentrepo.New(store)

	splitter := split.New(
		split.WithWindow(cfg.window),
		split.WithOverlap(cfg.overlap),
	)
	ingestSvc := ingestuc.New(chunkRepo, docEmb, splitter)
	if cfg.maxBatchSize > 0 {
		ingestSvc = ingestSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	retrievalSvc := retrievaluc.New(chunkRepo, queryEmb)
	usageSvc := usageuc.New(reader, cfg.provider)
	healthSvc := healthuc.New(store, kv, &embeddingHealthChecker{embedder: queryEmb})

	return &Client{
		store:        store,
		kv:           kv,
		docs:         docRepo,
		ingestSvc:    ingestSvc,
		retrievalSvc: retrievalSvc,
		usageSvc:     usageSvc,
		healthSvc:    healthSvc,
	}
}

// buildBudgetTracker creates the shared token budget tracker, persisted to
// the usage store when one is configured.
func buildBudgetTracker(ctx context.Context, kv db.KV, cfg *clientConfig) *embeddinguc.BudgetTracker {
	if cfg.dailyTokenLimit <= 0 && cfg.monthlyTokenLimit <= 0 {
		return nil
	}
	action := budget.ActionWarn
	if cfg.rejectOnExhausted {
		action = budget.ActionReject
	}
	tracker := embeddinguc.NewBudgetTracker(
		cfg.provider, cfg.dailyTokenLimit, cfg.monthlyTokenLimit, action, cfg.logger,
	)
	if kv != nil {
		tracker.WithStore(ctx, budgetrepo.New(kv, 48*time.Hour, 62*24*time.Hour))
	}
	return tracker
}

// embedderChain is what the assembled decorator stack provides.
type embedderChain interface {
	domain.Embedder
	domain.BatchEmbedder
}

// buildEmbedder assembles the decorator chain: provider -> budget
// instrumentation -> instruction prefix.
func buildEmbedder(cfg *clientConfig, instruction string, checker embeddinguc.BudgetChecker) embedderChain {
	var base domain.Embedder
	model := cfg.model
	if cfg.embedder != nil {
		base = &embedderAdapter{inner: cfg.embedder}
		if model == "" {
			model = "custom"
		}
	} else {
		// An empty key yields ErrUnavailable on the first embedding call, so
		// a read-only deployment can still start against existing chunks.
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.openAIBaseURL,
			Model:      cfg.model,
			Dimensions: domain.EmbeddingDim,
			Provider:   cfg.provider,
			Logger:     cfg.logger,
		})
	}

	chain := embeddinguc.NewInstrumentedEmbedder(base, cfg.provider, model, checker, cfg.logger)

	if instruction != "" {
		return domain.NewInstructionEmbedder(chain, instruction)
	}
	return chain
}

// Close releases all resources.
func (c *Client) Close() {
	if c.kv != nil {
		c.kv.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

// Ping checks chunk database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Usage returns an embedding usage report for the given period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	report := c.usageSvc.GetReport(ctx, domusage.Period(period))
	m := report.Metrics()
	b := report.Budget()

	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		Provider:    report.Provider(),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Metrics: UsageMetrics{
			EmbeddingRequests: m.EmbeddingRequests(),
			BatchRequests:     m.BatchRequests(),
			Tokens:            m.Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			Action:          string(b.ExhaustionAction()),
			ResetsAt:        time.UnixMilli(b.ResetsAt()).UTC(),
		},
	}
}

// Health checks the health of all wired components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
// When the wrapped value also implements BatchEmbedder, batch calls pass
// through as one upstream request instead of the sequential fallback.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		res, err := domain.BatchFallback(ctx, a, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		return res, nil
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// embeddingHealthChecker probes the embedder through the decorator stack.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
