package retrieval

import (
	"context"

	"github.com/praxis-cloud/ragcore/internal/domain"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
)

// ChunkSearcher runs tenant-scoped similarity search over stored chunks.
// Results arrive in descending similarity order with ties already broken by
// lower chunk index.
type ChunkSearcher interface {
	TopKBySimilarity(
		ctx context.Context, organizationID, documentID string,
		vector []float32, topK int,
	) ([]domchunk.Scored, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
