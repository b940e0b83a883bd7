package ragcore

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	dsn   string
	debug bool

	// Optional usage counter store. Without it budgets reset on restart.
	usageAddrs    []string
	usagePassword string

	// Embedding provider: either the built-in OpenAI-compatible transport
	// or a caller-supplied Embedder.
	provider      string
	openAIKey     string
	openAIBaseURL string
	model         string
	embedder      Embedder

	docInstruction   string
	queryInstruction string

	window       int
	overlap      int
	maxBatchSize int

	dailyTokenLimit   int64
	monthlyTokenLimit int64
	rejectOnExhausted bool

	migrate          bool
	readinessTimeout time.Duration
	logger           *zap.Logger
}

// WithPostgres points the client at the chunk database. Required.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dsn = dsn
	}
}

// WithPostgresDebug enables SQL statement logging on the chunk database.
func WithPostgresDebug() Option {
	return func(c *clientConfig) {
		c.debug = true
	}
}

// WithRedis configures the usage counter store. Optional; without it token
// budgets are tracked in memory only and reset on restart.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.usageAddrs = []string{addr}
		c.usagePassword = password
	}
}

// WithValkey configures the usage counter store against a Valkey instance.
// The wire protocol is shared, so this is WithRedis under another name.
func WithValkey(addr, password string) Option {
	return WithRedis(addr, password)
}

// WithOpenAI configures the built-in OpenAI-compatible embedding provider.
// model is the embedding model identifier (for example "text-embedding-3-large"
// with dimensions pinned to 1024, or a Qwen3-Embedding deployment).
func WithOpenAI(apiKey, model string) Option {
	return func(c *clientConfig) {
		c.provider = "openai"
		c.openAIKey = apiKey
		c.model = model
	}
}

// WithOpenAIBaseURL points the built-in provider at a compatible endpoint
// (Azure OpenAI, vLLM, text-embeddings-inference).
func WithOpenAIBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.openAIBaseURL = baseURL
	}
}

// WithEmbedder sets a caller-supplied embedding provider instead of the
// built-in OpenAI transport. Vectors must have 1024 dimensions.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.provider = "custom"
		c.embedder = e
	}
}

// WithInstructions sets instruction prefixes prepended to texts before
// embedding. Instruction-tuned models use different prefixes for stored
// documents and for queries. Empty strings disable prefixing.
func WithInstructions(document, query string) Option {
	return func(c *clientConfig) {
		c.docInstruction = document
		c.queryInstruction = query
	}
}

// WithSplitter overrides the chunking geometry (window and overlap, in
// runes). Defaults: window 1000, overlap 200. Changing the geometry changes
// chunk identity, so existing documents keep their old chunks until
// reindexed.
func WithSplitter(window, overlap int) Option {
	return func(c *clientConfig) {
		c.window = window
		c.overlap = overlap
	}
}

// WithMaxBatchSize sets the maximum number of documents per ReindexMany
// call. Default: 100.
func WithMaxBatchSize(size int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = size
	}
}

// WithBudget sets daily and monthly embedding token limits. Exhaustion is
// logged; calls still go through. Zero disables the corresponding limit.
func WithBudget(dailyTokens, monthlyTokens int64) Option {
	return func(c *clientConfig) {
		c.dailyTokenLimit = dailyTokens
		c.monthlyTokenLimit = monthlyTokens
	}
}

// WithBudgetEnforcement makes an exhausted budget reject embedding calls
// with ErrEmbeddingQuotaExceeded instead of only logging.
func WithBudgetEnforcement() Option {
	return func(c *clientConfig) {
		c.rejectOnExhausted = true
	}
}

// WithReadinessTimeout bounds how long New waits for the databases to
// answer pings. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// WithoutMigrate skips schema migration in New. Use when the connecting
// role has no DDL rights; the schema must then be prepared out of band.
func WithoutMigrate() Option {
	return func(c *clientConfig) {
		c.migrate = false
	}
}

// WithLogger enables structured logging for client operations.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
