package ragcore

import (
	"context"
	"time"

	"github.com/praxis-cloud/ragcore/internal/domain"
)

// EmbeddingDim is the fixed embedding dimensionality of the subsystem.
// Every stored and queried vector has exactly this many components.
const EmbeddingDim = domain.EmbeddingDim

// EmbeddingResult is one embedded text with provider token accounting.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds vectors for a batch of texts, in input order.
// Token counts cover the whole batch.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implementations supplied via WithEmbedder must
// return vectors with EmbeddingDim components.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is an optional upgrade of Embedder. When the supplied
// embedder implements it, document reindexing vectorizes all fragments in
// one call; otherwise the client falls back to sequential Embed calls.
type BatchEmbedder interface {
	Embedder
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// ChunkMetadata carries chunk provenance: rune offsets into the source text
// plus free-form labels.
type ChunkMetadata struct {
	StartOffset int
	EndOffset   int
	Extra       map[string]string
}

// Citation is one retrieved chunk with its provenance and similarity score.
type Citation struct {
	ChunkID     string
	DocumentID  string
	ChunkIndex  int
	Snippet     string
	ContentLang string
	TokenCount  int
	Similarity  float64
	Metadata    ChunkMetadata
}

// RetrievalMeta describes how a retrieval result was produced.
type RetrievalMeta struct {
	Strategy           string
	TopKRequested      int
	TopKReturned       int
	QueryChars         int
	ContextChars       int
	EmbeddingDimension int
	Warnings           []string
}

// RetrievalResult is the answer to one retrieval call: citations in
// similarity order and their contents assembled into readable context text.
type RetrievalResult struct {
	ContextText string
	Citations   []Citation
	Meta        RetrievalMeta
}

// ReindexItem is one document in a ReindexMany call.
type ReindexItem struct {
	DocumentID  string
	SourceText  string
	ContentLang string
}

// ReindexItemResult is the per-document outcome of a ReindexMany call.
// Err is nil on success and carries the sentinel-wrapping error otherwise.
type ReindexItemResult struct {
	DocumentID string
	ChunkCount int
	Err        error
}

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport contains embedding usage statistics for a time period.
type UsageReport struct {
	Period      UsagePeriod
	Provider    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Metrics     UsageMetrics
	Budget      BudgetStatus
}

// UsageMetrics tracks embedding resource consumption.
type UsageMetrics struct {
	EmbeddingRequests int
	BatchRequests     int
	Tokens            int
}

// BudgetStatus tracks token quota state. Action is "warn" or "reject".
type BudgetStatus struct {
	TokensLimit     int
	TokensRemaining int
	IsExhausted     bool
	Action          string
	ResetsAt        time.Time
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
