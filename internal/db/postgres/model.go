package postgres

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/praxis-cloud/ragcore/internal/db"
)

// rawJSON stores pre-encoded JSON in a jsonb column without decoding it.
// The repository layer owns the schema of the payload.
type rawJSON []byte

// Value implements driver.Valuer.
func (j rawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *rawJSON) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return nil
}

// chunkRow is the gorm model for one document chunk.
// Chunks are immutable; the only mutation is replacing a document's full set.
type chunkRow struct {
	ID             string          `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID string          `gorm:"size:64;not null;index"`
	DocumentID     string          `gorm:"size:64;not null;uniqueIndex:idx_document_chunks_doc_pos,priority:1"`
	ChunkIndex     int             `gorm:"not null;uniqueIndex:idx_document_chunks_doc_pos,priority:2"`
	Content        string          `gorm:"type:text;not null"`
	ContentLang    string          `gorm:"size:16"`
	TokenCount     int             `gorm:"default:0"`
	Metadata       rawJSON         `gorm:"type:jsonb"`
	Embedding      pgvector.Vector `gorm:"type:vector(1024)"` // domain.EmbeddingDim
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (chunkRow) TableName() string { return "document_chunks" }

// documentRow is the minimal ownership row read by the tenant check.
// The full document entity lives in the platform's document service.
type documentRow struct {
	ID             string    `gorm:"size:64;primary_key"`
	OrganizationID string    `gorm:"size:64;not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (documentRow) TableName() string { return "documents" }

func toChunkRow(rec db.ChunkRecord) chunkRow {
	return chunkRow{
		ID:             rec.ID,
		OrganizationID: rec.OrganizationID,
		DocumentID:     rec.DocumentID,
		ChunkIndex:     rec.ChunkIndex,
		Content:        rec.Content,
		ContentLang:    rec.ContentLang,
		TokenCount:     rec.TokenCount,
		Metadata:       rawJSON(rec.Metadata),
		Embedding:      pgvector.NewVector(rec.Embedding),
	}
}

func toChunkRecord(row chunkRow) db.ChunkRecord {
	return db.ChunkRecord{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		DocumentID:     row.DocumentID,
		ChunkIndex:     row.ChunkIndex,
		Content:        row.Content,
		ContentLang:    row.ContentLang,
		TokenCount:     row.TokenCount,
		Metadata:       []byte(row.Metadata),
		Embedding:      row.Embedding.Slice(),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
