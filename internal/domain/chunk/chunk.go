// Package chunk holds the document chunk aggregate: one retrievable unit of
// a document, carrying its own embedding.
package chunk

import (
	"fmt"
	"time"

	"github.com/praxis-cloud/ragcore/internal/domain"
)

// Chunk is the document chunk aggregate (immutable value object).
// Chunks are created only through ingestion as part of a full replace for
// their document and are never updated in place.
type Chunk struct {
	id             string
	organizationID string
	documentID     string
	index          int
	content        string
	contentLang    string
	tokenCount     int
	metadata       Metadata
	embedding      []float32
	createdAt      time.Time
	updatedAt      time.Time
}

// New validates and creates a Chunk ready for persistence. The surrogate id
// and timestamps are assigned by the store.
func New(
	organizationID, documentID string, index int,
	content, contentLang string, tokenCount int,
	metadata Metadata, embedding []float32,
) (Chunk, error) {
	if organizationID == "" {
		return Chunk{}, fmt.Errorf("organization ID is required")
	}
	if documentID == "" {
		return Chunk{}, fmt.Errorf("document ID is required")
	}
	if index < 0 {
		return Chunk{}, fmt.Errorf("chunk index must not be negative, got %d", index)
	}
	if content == "" {
		return Chunk{}, fmt.Errorf("content is required")
	}
	if tokenCount < 0 {
		return Chunk{}, fmt.Errorf("token count must not be negative, got %d", tokenCount)
	}
	if err := domain.ValidateDimension(embedding); err != nil {
		return Chunk{}, fmt.Errorf("chunk %d: %w", index, err)
	}

	return Chunk{
		organizationID: organizationID,
		documentID:     documentID,
		index:          index,
		content:        content,
		contentLang:    contentLang,
		tokenCount:     tokenCount,
		metadata:       metadata,
		embedding:      embedding,
	}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(
	id, organizationID, documentID string, index int,
	content, contentLang string, tokenCount int,
	metadata Metadata, embedding []float32,
	createdAt, updatedAt time.Time,
) Chunk {
	return Chunk{
		id:             id,
		organizationID: organizationID,
		documentID:     documentID,
		index:          index,
		content:        content,
		contentLang:    contentLang,
		tokenCount:     tokenCount,
		metadata:       metadata,
		embedding:      embedding,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ID returns the store-assigned surrogate identifier.
func (c *Chunk) ID() string { return c.id }

// OrganizationID returns the owning tenant.
func (c *Chunk) OrganizationID() string { return c.organizationID }

// DocumentID returns the owning document.
func (c *Chunk) DocumentID() string { return c.documentID }

// Index returns the zero-based position within the document's chunk sequence.
func (c *Chunk) Index() int { return c.index }

// Content returns the chunk text.
func (c *Chunk) Content() string { return c.content }

// ContentLang returns the language tag of the chunk text.
func (c *Chunk) ContentLang() string { return c.contentLang }

// TokenCount returns the approximate token length of the content.
func (c *Chunk) TokenCount() int { return c.tokenCount }

// Metadata returns the chunk metadata.
func (c *Chunk) Metadata() Metadata { return c.metadata }

// Embedding returns the embedding vector.
func (c *Chunk) Embedding() []float32 { return c.embedding }

// CreatedAt returns the store-assigned creation time.
func (c *Chunk) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the store-assigned update time.
func (c *Chunk) UpdatedAt() time.Time { return c.updatedAt }

// Scored pairs a retrieved chunk with its similarity to the query vector.
type Scored struct {
	Chunk      Chunk
	Similarity float64
}
