package chunk

import (
	"encoding/json"
	"fmt"

	"github.com/praxis-cloud/ragcore/internal/db"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
)

// metadataDTO is the persisted JSON shape of chunk metadata. The schema is
// deliberately closed: known offsets plus a string-to-string escape hatch.
type metadataDTO struct {
	StartOffset int               `json:"start_offset"`
	EndOffset   int               `json:"end_offset"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func encodeMetadata(m domchunk.Metadata) ([]byte, error) {
	data, err := json.Marshal(metadataDTO{
		StartOffset: m.StartOffset,
		EndOffset:   m.EndOffset,
		Extra:       m.Extra,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

func decodeMetadata(data []byte) (domchunk.Metadata, error) {
	if len(data) == 0 {
		return domchunk.Metadata{}, nil
	}
	var dto metadataDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domchunk.Metadata{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return domchunk.Metadata{
		StartOffset: dto.StartOffset,
		EndOffset:   dto.EndOffset,
		Extra:       dto.Extra,
	}, nil
}

func toRecord(c domchunk.Chunk) (db.ChunkRecord, error) {
	meta, err := encodeMetadata(c.Metadata())
	if err != nil {
		return db.ChunkRecord{}, err
	}
	return db.ChunkRecord{
		ID:             c.ID(),
		OrganizationID: c.OrganizationID(),
		DocumentID:     c.DocumentID(),
		ChunkIndex:     c.Index(),
		Content:        c.Content(),
		ContentLang:    c.ContentLang(),
		TokenCount:     c.TokenCount(),
		Metadata:       meta,
		Embedding:      c.Embedding(),
	}, nil
}

func toDomain(rec db.ChunkRecord) (domchunk.Chunk, error) {
	meta, err := decodeMetadata(rec.Metadata)
	if err != nil {
		return domchunk.Chunk{}, fmt.Errorf("chunk %s: %w", rec.ID, err)
	}
	return domchunk.Reconstruct(
		rec.ID, rec.OrganizationID, rec.DocumentID, rec.ChunkIndex,
		rec.Content, rec.ContentLang, rec.TokenCount,
		meta, rec.Embedding, rec.CreatedAt, rec.UpdatedAt,
	), nil
}
