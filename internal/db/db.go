package db

import (
	"context"
	"time"
)

// Store is the relational database facade for chunk and document persistence.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	ChunkStore
	DocumentStore
	Migrate(ctx context.Context) error
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// KV is the key-value facade for usage counters. It is not a cache: the only
// writes are atomic increments with a TTL set on first touch.
type KV interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ChunkRecord is the storage shape of one document chunk.
// Metadata is raw JSON; decoding it belongs to the repository layer.
type ChunkRecord struct {
	ID             string
	OrganizationID string
	DocumentID     string
	ChunkIndex     int
	Content        string
	ContentLang    string
	TokenCount     int
	Metadata       []byte
	Embedding      []float32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScoredChunkRecord is a chunk hit from a similarity search.
// Distance is the cosine distance reported by the store (0 = identical).
type ScoredChunkRecord struct {
	ChunkRecord
	Distance float64
}

// DocumentRecord is the minimal ownership row the tenant check reads.
type DocumentRecord struct {
	ID             string
	OrganizationID string
}

// ChunkStore provides chunk persistence and similarity queries.
type ChunkStore interface {
	// InsertChunks appends records in a single transaction. A duplicate
	// (document, index) pair fails the whole batch with ErrUniqueViolation.
	InsertChunks(ctx context.Context, records []ChunkRecord) error

	// ReplaceDocumentChunks deletes every chunk of the document and inserts
	// records in one transaction. An empty records slice clears the document.
	ReplaceDocumentChunks(ctx context.Context, documentID string, records []ChunkRecord) error

	// SearchSimilar returns up to TopK records ordered by ascending distance,
	// ties broken by ascending chunk index then document id.
	SearchSimilar(ctx context.Context, q *SimilarityQuery) ([]ScoredChunkRecord, error)

	// ListDocumentChunks returns the document's chunks in index order.
	ListDocumentChunks(ctx context.Context, documentID string) ([]ChunkRecord, error)
}

// DocumentStore provides the document ownership rows.
type DocumentStore interface {
	// GetDocumentOwner resolves a document id to its owning organization.
	// A missing document yields ErrNotFound.
	GetDocumentOwner(ctx context.Context, documentID string) (string, error)

	// UpsertDocument writes an ownership row, overwriting the organization
	// on conflict.
	UpsertDocument(ctx context.Context, rec DocumentRecord) error
}
