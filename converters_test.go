package ragcore

import (
	"errors"
	"testing"

	dombatch "github.com/praxis-cloud/ragcore/internal/domain/batch"
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
	domret "github.com/praxis-cloud/ragcore/internal/domain/retrieval"
)

func TestFromBatchResults(t *testing.T) {
	boom := errors.New("embed failed")
	results := fromBatchResults([]dombatch.Result{
		dombatch.NewOK("doc-1", 4),
		dombatch.NewError("doc-2", boom),
	})

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].DocumentID != "doc-1" || results[0].ChunkCount != 4 || results[0].Err != nil {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].DocumentID != "doc-2" || results[1].ChunkCount != 0 {
		t.Errorf("results[1] = %+v", results[1])
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("results[1].Err = %v, want wrapped boom", results[1].Err)
	}
}

func TestFromRetrievalResult(t *testing.T) {
	meta := domret.NewMeta(
		domret.StrategyCosineTopK, 5, 1, 18, 42, 1024,
		[]string{domret.WarnFewerResults},
	)
	cit := domret.NewCitation(
		"chunk-1", "doc-1", 2,
		"sample snippet", "ru", 7,
		domchunk.Metadata{StartOffset: 10, EndOffset: 52, Extra: map[string]string{"section": "intro"}},
		0.87,
	)
	res := domret.NewResult("собранный контекст", []domret.Citation{cit}, meta)

	got := fromRetrievalResult(res)

	if got.ContextText != "собранный контекст" {
		t.Errorf("context = %q", got.ContextText)
	}
	if len(got.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(got.Citations))
	}
	c := got.Citations[0]
	if c.ChunkID != "chunk-1" || c.DocumentID != "doc-1" || c.ChunkIndex != 2 {
		t.Errorf("citation identity = %+v", c)
	}
	if c.Snippet != "sample snippet" || c.ContentLang != "ru" || c.TokenCount != 7 {
		t.Errorf("citation payload = %+v", c)
	}
	if c.Similarity != 0.87 {
		t.Errorf("similarity = %v", c.Similarity)
	}
	if c.Metadata.StartOffset != 10 || c.Metadata.EndOffset != 52 {
		t.Errorf("metadata offsets = %+v", c.Metadata)
	}
	if c.Metadata.Extra["section"] != "intro" {
		t.Errorf("metadata extra = %v", c.Metadata.Extra)
	}

	if got.Meta.Strategy != domret.StrategyCosineTopK {
		t.Errorf("strategy = %q", got.Meta.Strategy)
	}
	if got.Meta.TopKRequested != 5 || got.Meta.TopKReturned != 1 {
		t.Errorf("topK = (%d, %d)", got.Meta.TopKRequested, got.Meta.TopKReturned)
	}
	if got.Meta.QueryChars != 18 || got.Meta.ContextChars != 42 || got.Meta.EmbeddingDimension != 1024 {
		t.Errorf("meta sizes = %+v", got.Meta)
	}
	if len(got.Meta.Warnings) != 1 || got.Meta.Warnings[0] != domret.WarnFewerResults {
		t.Errorf("warnings = %v", got.Meta.Warnings)
	}
}
