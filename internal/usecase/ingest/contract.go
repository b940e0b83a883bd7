package ingest

import (
	"context"

	"github.com/praxis-cloud/ragcore/internal/domain"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
)

// ChunkReplacer atomically swaps the stored chunks of a document.
type ChunkReplacer interface {
	ReplaceForDocument(ctx context.Context, organizationID, documentID string, chunks []domchunk.Chunk) error
}

// BatchEmbedder vectorizes all fragments of a document in a single API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
