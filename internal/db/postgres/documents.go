package postgres

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/praxis-cloud/ragcore/internal/db"
)

// GetDocumentOwner resolves a document id to its owning organization.
func (s *Store) GetDocumentOwner(ctx context.Context, documentID string) (string, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Select("id", "organization_id").
		First(&row, "id = ?", documentID).Error
	if err != nil {
		return "", translate(db.OpGetDocOwner, err)
	}
	return row.OrganizationID, nil
}

// UpsertDocument writes an ownership row, overwriting the organization on
// conflict.
func (s *Store) UpsertDocument(ctx context.Context, rec db.DocumentRecord) error {
	row := documentRow{ID: rec.ID, OrganizationID: rec.OrganizationID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"organization_id", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return translate(db.OpUpsertDoc, err)
	}
	return nil
}
