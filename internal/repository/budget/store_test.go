package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/praxis-cloud/ragcore/internal/db"
)

func TestIncrBy_HappyPath(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	var gotKey string
	var gotVal int64
	ms.incrFn = func(_ context.Context, key string, val int64) error {
		gotKey, gotVal = key, val
		return nil
	}

	err := s.IncrBy(ctx, "ragcore:budget:openai:daily:2026-08-25", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "ragcore:budget:openai:daily:2026-08-25" {
		t.Errorf("key = %q", gotKey)
	}
	if gotVal != 1500 {
		t.Errorf("val = %d", gotVal)
	}
	if !ms.expireCalled {
		t.Error("expected EXPIRE after INCRBY")
	}
}

func TestIncrBy_DailyTTL(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	var gotTTL time.Duration
	var gotNX bool
	ms.expireFn = func(_ context.Context, _ string, ttl time.Duration, nx bool) error {
		gotTTL, gotNX = ttl, nx
		return nil
	}

	if err := s.IncrBy(ctx, "ragcore:budget:openai:daily:2026-08-25", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 48*time.Hour {
		t.Errorf("daily ttl = %v", gotTTL)
	}
	if !gotNX {
		t.Error("expected NX expire so repeat increments do not reset the TTL")
	}
}

func TestIncrBy_MonthlyTTL(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	var gotTTL time.Duration
	ms.expireFn = func(_ context.Context, _ string, ttl time.Duration, _ bool) error {
		gotTTL = ttl
		return nil
	}

	if err := s.IncrBy(ctx, "ragcore:budget:openai:monthly:2026-08", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 62*24*time.Hour {
		t.Errorf("monthly ttl = %v", gotTTL)
	}
}

func TestIncrBy_IncrError(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	cause := errors.New("connection refused")
	ms.incrFn = func(_ context.Context, _ string, _ int64) error { return cause }

	err := s.IncrBy(ctx, "ragcore:budget:openai:daily:2026-08-25", 1)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if ms.expireCalled {
		t.Error("EXPIRE must not run after a failed INCRBY")
	}
}

func TestIncrBy_ExpireError(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	cause := errors.New("connection refused")
	ms.expireFn = func(_ context.Context, _ string, _ time.Duration, _ bool) error { return cause }

	err := s.IncrBy(ctx, "ragcore:budget:openai:daily:2026-08-25", 1)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestGet_HappyPath(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key != "ragcore:budget:openai:daily:2026-08-25" {
			t.Errorf("key = %q", key)
		}
		return []byte("384200"), nil
	}

	val, err := s.Get(ctx, "ragcore:budget:openai:daily:2026-08-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 384200 {
		t.Errorf("val = %d", val)
	}
}

func TestGet_MissingKeyIsZero(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	val, err := s.Get(ctx, "ragcore:budget:openai:daily:2026-08-25")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if val != 0 {
		t.Errorf("val = %d, want 0", val)
	}
}

func TestGet_StoreError(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	cause := errors.New("timeout")
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, cause }

	_, err := s.Get(ctx, "ragcore:budget:openai:daily:2026-08-25")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestGet_GarbageValue(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not-a-number"), nil
	}

	if _, err := s.Get(ctx, "ragcore:budget:openai:daily:2026-08-25"); err == nil {
		t.Fatal("expected parse error")
	}
}
