package document

import (
	"context"
	"testing"

	"github.com/praxis-cloud/ragcore/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	ownerFn  func(ctx context.Context, documentID string) (string, error)
	upsertFn func(ctx context.Context, rec db.DocumentRecord) error
}

func (m *mockStore) GetDocumentOwner(ctx context.Context, documentID string) (string, error) {
	if m.ownerFn != nil {
		return m.ownerFn(ctx, documentID)
	}
	return "org-1", nil
}

func (m *mockStore) UpsertDocument(ctx context.Context, rec db.DocumentRecord) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
