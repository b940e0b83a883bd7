package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for a single request. The transport
// puts a mutable pointer into the context before calling the service; the
// embedder chain writes into it; the transport reads it for response headers.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // true if the embedding dependency was called at all
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
