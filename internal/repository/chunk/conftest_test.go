package chunk

import (
	"context"
	"testing"

	"github.com/praxis-cloud/ragcore/internal/db"
	"github.com/praxis-cloud/ragcore/internal/domain"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertFn  func(ctx context.Context, records []db.ChunkRecord) error
	replaceFn func(ctx context.Context, documentID string, records []db.ChunkRecord) error
	searchFn  func(ctx context.Context, q *db.SimilarityQuery) ([]db.ScoredChunkRecord, error)
	listFn    func(ctx context.Context, documentID string) ([]db.ChunkRecord, error)

	insertCalled  bool
	replaceCalled bool
}

func (m *mockStore) InsertChunks(ctx context.Context, records []db.ChunkRecord) error {
	m.insertCalled = true
	if m.insertFn != nil {
		return m.insertFn(ctx, records)
	}
	return nil
}

func (m *mockStore) ReplaceDocumentChunks(ctx context.Context, documentID string, records []db.ChunkRecord) error {
	m.replaceCalled = true
	if m.replaceFn != nil {
		return m.replaceFn(ctx, documentID, records)
	}
	return nil
}

func (m *mockStore) SearchSimilar(ctx context.Context, q *db.SimilarityQuery) ([]db.ScoredChunkRecord, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) ListDocumentChunks(ctx context.Context, documentID string) ([]db.ChunkRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, documentID)
	}
	return nil, nil
}

// mockOwners implements the ownership lookup for tests.
type mockOwners struct {
	ownerFn     func(ctx context.Context, documentID string) (string, error)
	ownerCalled bool
}

func (m *mockOwners) GetDocumentOwner(ctx context.Context, documentID string) (string, error) {
	m.ownerCalled = true
	if m.ownerFn != nil {
		return m.ownerFn(ctx, documentID)
	}
	return "org-1", nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockOwners) {
	t.Helper()
	ms := &mockStore{}
	mo := &mockOwners{}
	return New(ms, mo), ms, mo
}

func testVector() []float32 {
	vec := make([]float32, domain.EmbeddingDim)
	for i := range vec {
		vec[i] = float32(i) * 0.001
	}
	return vec
}

func testChunk(t *testing.T, index int) domchunk.Chunk {
	t.Helper()
	c, err := domchunk.New("org-1", "doc-1", index, "chunk content", "en", 3,
		domchunk.Metadata{StartOffset: index * 10, EndOffset: index*10 + 13}, testVector())
	if err != nil {
		t.Fatalf("building test chunk: %v", err)
	}
	return c
}

func testRecord(id string, documentID string, index int, distance float64) db.ScoredChunkRecord {
	return db.ScoredChunkRecord{
		ChunkRecord: db.ChunkRecord{
			ID:             id,
			OrganizationID: "org-1",
			DocumentID:     documentID,
			ChunkIndex:     index,
			Content:        "stored content",
			ContentLang:    "en",
			TokenCount:     4,
			Metadata:       []byte(`{"start_offset":0,"end_offset":14}`),
			Embedding:      testVector(),
		},
		Distance: distance,
	}
}
