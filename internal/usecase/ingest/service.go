package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praxis-cloud/ragcore/internal/domain"
	dombatch "github.com/praxis-cloud/ragcore/internal/domain/batch"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
	"github.com/praxis-cloud/ragcore/internal/domain/split"
	"github.com/praxis-cloud/ragcore/internal/metrics"
)

// MaxBatchSize is the maximum number of documents per batch reindex request.
const MaxBatchSize = 100

// Request describes one document reindex.
type Request struct {
	OrganizationID string
	DocumentID     string
	SourceText     string
	ContentLang    string
}

// Item is one document inside a batch reindex request.
type Item struct {
	DocumentID  string
	SourceText  string
	ContentLang string
}

// Service rebuilds document chunk indexes. The source text is split into
// fragments and embedded in a single provider call before the store
// transaction opens, then the stored chunks are replaced atomically.
// Reindexing identical text produces identical chunks.
type Service struct {
	chunks       ChunkReplacer
	embed        BatchEmbedder
	splitter     *split.Splitter
	maxBatchSize int
}

// New creates an ingestion service.
func New(chunks ChunkReplacer, embed BatchEmbedder, splitter *split.Splitter) *Service {
	return &Service{
		chunks:       chunks,
		embed:        embed,
		splitter:     splitter,
		maxBatchSize: MaxBatchSize,
	}
}

// WithMaxBatchSize configures the maximum batch reindex size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Reindex replaces the chunk index of one document with chunks derived from
// req.SourceText and returns the new chunk count. Empty or whitespace-only
// text clears the index. Embeddings are fully computed before the store
// transaction opens, so a failed embed leaves the previous index untouched.
func (s *Service) Reindex(ctx context.Context, req Request) (int, error) {
	start := time.Now()
	n, err := s.reindex(ctx, req)
	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IngestRequestsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.IngestRequestsTotal.WithLabelValues("ok").Inc()
	metrics.IngestChunksTotal.Add(float64(n))
	return n, nil
}

func (s *Service) reindex(ctx context.Context, req Request) (int, error) {
	if req.OrganizationID == "" {
		return 0, domain.NewValidation("organizationId", "must not be empty")
	}
	if req.DocumentID == "" {
		return 0, domain.NewValidation("documentId", "must not be empty")
	}

	fragments := s.splitter.Split(req.SourceText)
	if len(fragments) == 0 {
		// Nothing to index: clear whatever was stored before.
		if err := s.chunks.ReplaceForDocument(ctx, req.OrganizationID, req.DocumentID, nil); err != nil {
			return 0, fmt.Errorf("clear chunks: %w", err)
		}
		return 0, nil
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}

	embRes, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("vectorize fragments: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)

	if len(embRes.Embeddings) != len(fragments) {
		return 0, fmt.Errorf("got %d embeddings for %d fragments: %w",
			len(embRes.Embeddings), len(fragments), domain.ErrEmbeddingProviderError)
	}

	chunks := make([]domchunk.Chunk, len(fragments))
	for i, f := range fragments {
		c, buildErr := domchunk.New(
			req.OrganizationID, req.DocumentID, f.Index,
			f.Text, req.ContentLang, f.TokenCount(),
			domchunk.Metadata{StartOffset: f.StartOffset, EndOffset: f.EndOffset},
			embRes.Embeddings[i],
		)
		if buildErr != nil {
			return 0, fmt.Errorf("build chunk %d: %w", f.Index, buildErr)
		}
		chunks[i] = c
	}

	if err := s.chunks.ReplaceForDocument(ctx, req.OrganizationID, req.DocumentID, chunks); err != nil {
		return 0, fmt.Errorf("replace chunks: %w", err)
	}
	return len(chunks), nil
}

// ReindexMany rebuilds several documents sequentially with per-document
// outcomes. Quota and availability errors cascade to the remaining items
// so an exhausted budget fails fast instead of hammering the provider.
func (s *Service) ReindexMany(ctx context.Context, organizationID string, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		err := domain.NewValidation("documents", fmt.Sprintf("batch size exceeds %d", s.maxBatchSize))
		for i, item := range items {
			results[i] = dombatch.NewError(item.DocumentID, err)
		}
		return results
	}

	for i, item := range items {
		n, err := s.Reindex(ctx, Request{
			OrganizationID: organizationID,
			DocumentID:     item.DocumentID,
			SourceText:     item.SourceText,
			ContentLang:    item.ContentLang,
		})
		if err != nil {
			results[i] = dombatch.NewError(item.DocumentID, err)
			if errors.Is(err, domain.ErrEmbeddingQuotaExceeded) || errors.Is(err, domain.ErrUnavailable) {
				for j := i + 1; j < len(items); j++ {
					results[j] = dombatch.NewError(items[j].DocumentID, err)
				}
				return results
			}
			continue
		}
		results[i] = dombatch.NewOK(item.DocumentID, n)
	}

	return results
}
