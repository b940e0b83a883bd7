package ragcore

import "time"

// ReindexRequest replaces the chunk index of one document.
type ReindexRequest struct {
	// DocumentID is a path parameter, not part of the JSON body.
	DocumentID string `json:"-"`

	OrganizationID string `json:"organizationId"`
	SourceText     string `json:"sourceText"`
	ContentLang    string `json:"contentLang,omitempty"`
}

// ReindexResult reports how many chunks replaced the previous index.
type ReindexResult struct {
	DocumentID string `json:"documentId"`
	ChunkCount int    `json:"chunkCount"`

	// EmbeddingTokens is taken from the X-Embedding-Tokens response header:
	// provider tokens this call consumed.
	EmbeddingTokens int `json:"-"`
}

// BatchReindexItem is one document inside a batch reindex request.
type BatchReindexItem struct {
	DocumentID  string `json:"documentId"`
	SourceText  string `json:"sourceText"`
	ContentLang string `json:"contentLang,omitempty"`
}

// ReindexBatchRequest reindexes several documents of one organization.
type ReindexBatchRequest struct {
	OrganizationID string             `json:"organizationId"`
	Documents      []BatchReindexItem `json:"documents"`
}

// BatchResultItem is the per-document outcome of a batch reindex.
type BatchResultItem struct {
	DocumentID string       `json:"documentId"`
	Status     string       `json:"status"` // "ok" or "error"
	ChunkCount int          `json:"chunkCount"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// ReindexBatchResult summarizes a batch reindex run.
type ReindexBatchResult struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`

	EmbeddingTokens int `json:"-"`
}

// RetrieveRequest asks for the chunks most similar to QueryText.
type RetrieveRequest struct {
	OrganizationID string `json:"organizationId"`
	// DocumentID restricts the search to one document. Empty searches every
	// document of the organization.
	DocumentID string `json:"documentId,omitempty"`
	QueryText  string `json:"queryText"`
	// TopK is the maximum number of chunks to return. Zero lets the service
	// apply its default of 5; the service clamps values over 50.
	TopK int `json:"topK,omitempty"`
}

// ChunkMetadata carries the chunk's rune offsets into the source text plus
// free-form labels.
type ChunkMetadata struct {
	StartOffset int               `json:"startOffset"`
	EndOffset   int               `json:"endOffset"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Citation is one retrieved chunk with its provenance and similarity score.
type Citation struct {
	ChunkID     string        `json:"chunkId"`
	DocumentID  string        `json:"documentId"`
	ChunkIndex  int           `json:"chunkIndex"`
	Snippet     string        `json:"snippet"`
	ContentLang string        `json:"contentLang,omitempty"`
	TokenCount  int           `json:"tokenCount"`
	Metadata    ChunkMetadata `json:"metadata"`
	Similarity  float64       `json:"similarity"`
}

// RetrievalMeta describes how a retrieval result was produced.
type RetrievalMeta struct {
	Strategy           string   `json:"strategy"`
	TopKRequested      int      `json:"topKRequested"`
	TopKReturned       int      `json:"topKReturned"`
	QueryChars         int      `json:"queryChars"`
	ContextChars       int      `json:"contextChars"`
	EmbeddingDimension int      `json:"embeddingDimension"`
	Warnings           []string `json:"warnings,omitempty"`
}

// RetrieveResult is the answer to one retrieval call.
type RetrieveResult struct {
	ContextText string        `json:"contextText"`
	Citations   []Citation    `json:"citations"`
	Meta        RetrievalMeta `json:"meta"`

	EmbeddingTokens int `json:"-"`
}

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants. An empty period lets the service pick its default
// (month).
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageMetrics tracks embedding resource consumption.
type UsageMetrics struct {
	EmbeddingRequests int  `json:"embeddingRequests"`
	BatchRequests     int  `json:"batchRequests"`
	Tokens            int  `json:"tokens"`
	CostMillidollars  *int `json:"costMillidollars,omitempty"`
}

// BudgetStatus tracks token quota state. Action is "warn" or "reject".
type BudgetStatus struct {
	TokensLimit     int        `json:"tokensLimit"`
	TokensRemaining int        `json:"tokensRemaining"`
	IsExhausted     bool       `json:"isExhausted"`
	Action          string     `json:"action"`
	ResetsAt        *time.Time `json:"resetsAt,omitempty"`
}

// UsageReport contains embedding usage statistics for a time period.
// Period boundaries are omitted for the "total" period.
type UsageReport struct {
	Period        UsagePeriod  `json:"period"`
	Provider      string       `json:"provider"`
	PeriodStartAt *time.Time   `json:"periodStartAt,omitempty"`
	PeriodEndAt   *time.Time   `json:"periodEndAt,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthStatus represents the aggregated health of a deployment.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}
