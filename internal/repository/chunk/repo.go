// Package chunk persists document chunks and runs similarity queries.
//
// Every write resolves the document's owning organization first. A caller
// from another organization gets ErrForbidden before any chunk state is
// read or written, and a missing document gets ErrNotFound, so the two
// cases cannot be told apart by timing against chunk storage.
package chunk

import (
	"context"
	"errors"
	"fmt"

	"github.com/praxis-cloud/ragcore/internal/db"
	"github.com/praxis-cloud/ragcore/internal/domain"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
)

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	InsertChunks(ctx context.Context, records []db.ChunkRecord) error
	ReplaceDocumentChunks(ctx context.Context, documentID string, records []db.ChunkRecord) error
	SearchSimilar(ctx context.Context, q *db.SimilarityQuery) ([]db.ScoredChunkRecord, error)
	ListDocumentChunks(ctx context.Context, documentID string) ([]db.ChunkRecord, error)
}

// owners resolves document ownership for the tenant check.
type owners interface {
	GetDocumentOwner(ctx context.Context, documentID string) (string, error)
}

// Repo implements chunk storage over db.Store.
type Repo struct {
	store  store
	owners owners
}

// New creates a chunk repository.
func New(s store, o owners) *Repo {
	return &Repo{store: s, owners: o}
}

// InsertForDocument appends chunks to a document. The batch fails whole:
// a duplicate position inside the batch or against stored rows is a
// conflict and nothing is written.
func (r *Repo) InsertForDocument(ctx context.Context, organizationID, documentID string, chunks []domchunk.Chunk) error {
	if err := r.checkOwner(ctx, organizationID, documentID); err != nil {
		return err
	}
	if err := validateBatch(organizationID, documentID, chunks); err != nil {
		return err
	}

	records, err := toRecords(chunks)
	if err != nil {
		return err
	}
	if err := r.store.InsertChunks(ctx, records); err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return fmt.Errorf("insert chunks for document %s: %w", documentID, domain.ErrConflict)
		}
		return fmt.Errorf("insert chunks for document %s: %w", documentID, err)
	}
	return nil
}

// ReplaceForDocument atomically swaps the document's chunk set. An empty
// slice clears the document. Readers never observe a partial set.
func (r *Repo) ReplaceForDocument(ctx context.Context, organizationID, documentID string, chunks []domchunk.Chunk) error {
	if err := r.checkOwner(ctx, organizationID, documentID); err != nil {
		return err
	}
	if err := validateBatch(organizationID, documentID, chunks); err != nil {
		return err
	}

	records, err := toRecords(chunks)
	if err != nil {
		return err
	}
	if err := r.store.ReplaceDocumentChunks(ctx, documentID, records); err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return fmt.Errorf("replace chunks for document %s: %w", documentID, domain.ErrConflict)
		}
		return fmt.Errorf("replace chunks for document %s: %w", documentID, err)
	}
	return nil
}

// TopKBySimilarity returns the organization's most similar chunks in
// descending similarity order, ties broken by lower chunk index.
// documentID narrows the scope; empty means the whole organization.
//
// There is no ownership lookup here: the organization filter applies to
// every row, so a foreign document id yields an empty result,
// indistinguishable from an unindexed one.
func (r *Repo) TopKBySimilarity(ctx context.Context, organizationID, documentID string, vector []float32, topK int) ([]domchunk.Scored, error) {
	q, err := db.NewSimilarityQuery(organizationID).
		WithDocument(documentID).
		WithVector(vector).
		WithTopK(topK).
		Build()
	if err != nil {
		return nil, err
	}

	records, err := r.store.SearchSimilar(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("similarity search for organization %s: %w", organizationID, err)
	}

	scored := make([]domchunk.Scored, 0, len(records))
	for _, rec := range records {
		c, err := toDomain(rec.ChunkRecord)
		if err != nil {
			return nil, err
		}
		scored = append(scored, domchunk.Scored{
			Chunk:      c,
			Similarity: 1 - rec.Distance, // cosine distance → similarity
		})
	}
	return scored, nil
}

// ListForDocument returns the document's chunks in position order.
func (r *Repo) ListForDocument(ctx context.Context, organizationID, documentID string) ([]domchunk.Chunk, error) {
	if err := r.checkOwner(ctx, organizationID, documentID); err != nil {
		return nil, err
	}

	records, err := r.store.ListDocumentChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks for document %s: %w", documentID, err)
	}

	chunks := make([]domchunk.Chunk, 0, len(records))
	for _, rec := range records {
		c, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// checkOwner resolves the document's organization before any chunk work.
func (r *Repo) checkOwner(ctx context.Context, organizationID, documentID string) error {
	if documentID == "" {
		return domain.NewValidation("documentId", "must not be empty")
	}
	owner, err := r.owners.GetDocumentOwner(ctx, documentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return fmt.Errorf("resolve owner of document %s: %w", documentID, err)
	}
	if owner != organizationID {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrForbidden)
	}
	return nil
}

// validateBatch rejects chunks pointing at another document or organization
// and duplicate positions within the batch.
func validateBatch(organizationID, documentID string, chunks []domchunk.Chunk) error {
	seen := make(map[int]struct{}, len(chunks))
	for _, c := range chunks {
		if c.DocumentID() != documentID {
			return domain.NewValidation("chunks", "chunk document id does not match target document")
		}
		if c.OrganizationID() != organizationID {
			return domain.NewValidation("chunks", "chunk organization id does not match caller organization")
		}
		if _, dup := seen[c.Index()]; dup {
			return domain.NewChunkIndexConflict(documentID, c.Index())
		}
		seen[c.Index()] = struct{}{}
	}
	return nil
}

func toRecords(chunks []domchunk.Chunk) ([]db.ChunkRecord, error) {
	records := make([]db.ChunkRecord, len(chunks))
	for i, c := range chunks {
		rec, err := toRecord(c)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}
