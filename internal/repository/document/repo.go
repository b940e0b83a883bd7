// Package document resolves document ownership.
//
// Documents themselves live in the platform's document service; this
// subsystem only keeps the id → organization mapping that the tenant
// isolation check reads.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/praxis-cloud/ragcore/internal/db"
	"github.com/praxis-cloud/ragcore/internal/domain"
)

// Ref identifies a document and its owning organization.
type Ref struct {
	ID             string
	OrganizationID string
}

// store is the consumer interface for ownership rows (ISP).
type store interface {
	GetDocumentOwner(ctx context.Context, documentID string) (string, error)
	UpsertDocument(ctx context.Context, rec db.DocumentRecord) error
}

// Repo implements the document directory over db.Store.
type Repo struct {
	store store
}

// New creates a document directory.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Resolve looks up the owning organization of a document.
func (r *Repo) Resolve(ctx context.Context, documentID string) (Ref, error) {
	if documentID == "" {
		return Ref{}, domain.NewValidation("documentId", "must not be empty")
	}
	owner, err := r.store.GetDocumentOwner(ctx, documentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Ref{}, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return Ref{}, fmt.Errorf("resolve document %s: %w", documentID, err)
	}
	return Ref{ID: documentID, OrganizationID: owner}, nil
}

// Register writes the ownership row. Registering an already known document
// moves it to the given organization.
func (r *Repo) Register(ctx context.Context, ref Ref) error {
	if ref.ID == "" {
		return domain.NewValidation("documentId", "must not be empty")
	}
	if ref.OrganizationID == "" {
		return domain.NewValidation("organizationId", "must not be empty")
	}
	err := r.store.UpsertDocument(ctx, db.DocumentRecord{
		ID:             ref.ID,
		OrganizationID: ref.OrganizationID,
	})
	if err != nil {
		return fmt.Errorf("register document %s: %w", ref.ID, err)
	}
	return nil
}
