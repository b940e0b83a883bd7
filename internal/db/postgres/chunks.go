package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/praxis-cloud/ragcore/internal/db"
)

// InsertChunks appends records in one transaction.
func (s *Store) InsertChunks(ctx context.Context, records []db.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]chunkRow, len(records))
	for i, rec := range records {
		rows[i] = toChunkRow(rec)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return translate(db.OpInsertChunks, err)
	}
	return nil
}

// ReplaceDocumentChunks swaps a document's chunk set in one transaction.
// Readers see either the old set or the new set, never a mix.
func (s *Store) ReplaceDocumentChunks(ctx context.Context, documentID string, records []db.ChunkRecord) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&chunkRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]chunkRow, len(records))
		for i, rec := range records {
			rows[i] = toChunkRow(rec)
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return translate(db.OpReplaceChunks, err)
	}
	return nil
}

// scoredRow carries the cosine distance computed by the database.
type scoredRow struct {
	chunkRow
	Distance float64 `gorm:"column:distance"`
}

// SearchSimilar runs a cosine nearest-neighbor query. Ordering is total:
// distance, then chunk index, then document id, so equal-distance rows come
// back in a deterministic order.
func (s *Store) SearchSimilar(ctx context.Context, q *db.SimilarityQuery) ([]db.ScoredChunkRecord, error) {
	query := s.db.WithContext(ctx).
		Table("document_chunks").
		Select("*, embedding <=> ? AS distance", pgvector.NewVector(q.Vector())).
		Where("organization_id = ?", q.OrganizationID()).
		Order("distance ASC, chunk_index ASC, document_id ASC").
		Limit(q.TopK())

	if q.DocumentID() != "" {
		query = query.Where("document_id = ?", q.DocumentID())
	}

	var rows []scoredRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, translate(db.OpSearchSimilar, err)
	}

	out := make([]db.ScoredChunkRecord, len(rows))
	for i, row := range rows {
		out[i] = db.ScoredChunkRecord{
			ChunkRecord: toChunkRecord(row.chunkRow),
			Distance:    row.Distance,
		}
	}
	return out, nil
}

// ListDocumentChunks returns a document's chunks in position order.
func (s *Store) ListDocumentChunks(ctx context.Context, documentID string) ([]db.ChunkRecord, error) {
	var rows []chunkRow
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(db.OpListChunks, err)
	}

	out := make([]db.ChunkRecord, len(rows))
	for i, row := range rows {
		out[i] = toChunkRecord(row)
	}
	return out, nil
}
