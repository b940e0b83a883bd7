package budget

import (
	"context"
	"testing"
	"time"
)

// mockStore is a hand-written KV mock with per-test function fields.
type mockStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrFn   func(ctx context.Context, key string, val int64) error
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error

	incrCalled   bool
	expireCalled bool
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return []byte("0"), nil
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) error {
	m.incrCalled = true
	if m.incrFn != nil {
		return m.incrFn(ctx, key, val)
	}
	return nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	m.expireCalled = true
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func newTestStore(t *testing.T) (*Store, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, 48*time.Hour, 62*24*time.Hour), ms
}
