package document

import (
	"context"
	"errors"
	"testing"

	"github.com/praxis-cloud/ragcore/internal/db"
	"github.com/praxis-cloud/ragcore/internal/domain"
)

func TestResolve_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.ownerFn = func(_ context.Context, documentID string) (string, error) {
		if documentID != "doc-1" {
			t.Errorf("documentID = %q", documentID)
		}
		return "org-7", nil
	}

	ref, err := repo.Resolve(ctx, "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "doc-1" || ref.OrganizationID != "org-7" {
		t.Errorf("ref = %+v", ref)
	}
}

func TestResolve_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.ownerFn = func(_ context.Context, _ string) (string, error) {
		return "", db.ErrNotFound
	}

	_, err := repo.Resolve(ctx, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_EmptyID(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Resolve(context.Background(), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestResolve_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	cause := errors.New("timeout")
	ms.ownerFn = func(_ context.Context, _ string) (string, error) { return "", cause }

	_, err := repo.Resolve(ctx, "doc-1")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Error("infra failures must not read as NotFound")
	}
}

func TestRegister_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var got db.DocumentRecord
	ms.upsertFn = func(_ context.Context, rec db.DocumentRecord) error {
		got = rec
		return nil
	}

	err := repo.Register(ctx, Ref{ID: "doc-1", OrganizationID: "org-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "doc-1" || got.OrganizationID != "org-1" {
		t.Errorf("record = %+v", got)
	}
}

func TestRegister_Validation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Register(ctx, Ref{OrganizationID: "org-1"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing id: got %v", err)
	}
	if err := repo.Register(ctx, Ref{ID: "doc-1"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing organization: got %v", err)
	}
}

func TestRegister_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	cause := errors.New("connection reset")
	ms.upsertFn = func(_ context.Context, _ db.DocumentRecord) error { return cause }

	err := repo.Register(ctx, Ref{ID: "doc-1", OrganizationID: "org-1"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
