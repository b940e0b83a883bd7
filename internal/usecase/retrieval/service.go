package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/praxis-cloud/ragcore/internal/domain"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
	domret "github.com/praxis-cloud/ragcore/internal/domain/retrieval"
	"github.com/praxis-cloud/ragcore/internal/metrics"
)

// DefaultTopK is the chunk count transports use when a request leaves topK
// unset. The service itself requires an explicit positive topK.
const DefaultTopK = 5

// MaxTopK is the cap transports and the embedded client clamp oversized
// requests to before calling the service.
const MaxTopK = 50

// snippetMaxRunes caps citation snippets so responses stay small even for
// window-sized chunks.
const snippetMaxRunes = 240

// contextSeparator joins chunk contents in the assembled context text.
const contextSeparator = "\n\n"

// Request describes one retrieval call. DocumentID narrows the scope to a
// single document; empty means the whole tenant.
type Request struct {
	OrganizationID string
	DocumentID     string
	QueryText      string
	TopK           int
}

// Service answers retrieval requests: embed the query, select the most
// similar chunks, assemble them into citations and readable context.
type Service struct {
	chunks ChunkSearcher
	embed  Embedder
}

// New creates a retrieval service.
func New(chunks ChunkSearcher, embed Embedder) *Service {
	return &Service{chunks: chunks, embed: embed}
}

// Retrieve serves one retrieval request end-to-end. Similarity decides which
// chunks are selected and the citation order; the context text is reassembled
// in document order so it reads as a coherent excerpt. An empty scope yields
// an empty result with a warning, never an error.
func (s *Service) Retrieve(ctx context.Context, req Request) (domret.Result, error) {
	start := time.Now()
	res, err := s.retrieve(ctx, req)
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return domret.Result{}, err
	}
	metrics.RetrievalRequestsTotal.WithLabelValues("ok").Inc()
	metrics.RetrievalChunksReturned.Observe(float64(res.Meta().TopKReturned()))
	return res, nil
}

func (s *Service) retrieve(ctx context.Context, req Request) (domret.Result, error) {
	// Validate before the embedding call so malformed requests never burn
	// provider tokens.
	if req.OrganizationID == "" {
		return domret.Result{}, domain.NewValidation("organizationId", "must not be empty")
	}
	if strings.TrimSpace(req.QueryText) == "" {
		return domret.Result{}, domain.NewValidation("queryText", "must not be empty")
	}
	if req.TopK <= 0 {
		return domret.Result{}, domain.NewValidation("topK", "must be positive")
	}

	embRes, err := s.embed.Embed(ctx, req.QueryText)
	if err != nil {
		return domret.Result{}, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)

	scored, err := s.chunks.TopKBySimilarity(ctx, req.OrganizationID, req.DocumentID, embRes.Embedding, req.TopK)
	if err != nil {
		return domret.Result{}, fmt.Errorf("search chunks: %w", err)
	}

	citations := buildCitations(scored)
	contextText := assembleContext(scored)

	meta := domret.NewMeta(
		domret.StrategyCosineTopK,
		req.TopK, len(scored),
		utf8.RuneCountInString(req.QueryText),
		utf8.RuneCountInString(contextText),
		domain.EmbeddingDim,
		warningsFor(req.TopK, len(scored)),
	)

	return domret.NewResult(contextText, citations, meta), nil
}

// buildCitations projects scored chunks into citations, preserving the
// store's similarity order.
func buildCitations(scored []domchunk.Scored) []domret.Citation {
	citations := make([]domret.Citation, len(scored))
	for i := range scored {
		c := &scored[i].Chunk
		citations[i] = domret.NewCitation(
			c.ID(), c.DocumentID(), c.Index(),
			snippet(c.Content()), c.ContentLang(), c.TokenCount(),
			c.Metadata(), scored[i].Similarity,
		)
	}
	return citations
}

// assembleContext concatenates chunk contents in document order (document,
// then ascending chunk index), not similarity order.
func assembleContext(scored []domchunk.Scored) string {
	if len(scored) == 0 {
		return ""
	}

	ordered := make([]domchunk.Scored, len(scored))
	copy(ordered, scored)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := &ordered[i].Chunk, &ordered[j].Chunk
		if a.DocumentID() != b.DocumentID() {
			return a.DocumentID() < b.DocumentID()
		}
		return a.Index() < b.Index()
	})

	parts := make([]string, len(ordered))
	for i := range ordered {
		parts[i] = ordered[i].Chunk.Content()
	}
	return strings.Join(parts, contextSeparator)
}

func snippet(content string) string {
	if utf8.RuneCountInString(content) <= snippetMaxRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:snippetMaxRunes-1]) + "…"
}

func warningsFor(requested, returned int) []string {
	switch {
	case returned == 0:
		return []string{domret.WarnEmptyScope}
	case returned < requested:
		return []string{domret.WarnFewerResults}
	default:
		return nil
	}
}
