// Package retrieval holds the value objects returned by similarity retrieval.
package retrieval

import (
	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
)

// StrategyCosineTopK is the only retrieval strategy currently implemented.
const StrategyCosineTopK = "cosine_topk"

// Retrieval warnings. An incomplete or empty result is a valid outcome, not
// an error.
const (
	// WarnEmptyScope is reported when the requested scope has no indexed chunks.
	WarnEmptyScope = "no chunks indexed for the requested scope"
	// WarnFewerResults is reported when the store returned fewer chunks than
	// requested.
	WarnFewerResults = "fewer results than requested"
)

// Citation points a generated answer back at one retrieved chunk.
type Citation struct {
	chunkID     string
	documentID  string
	chunkIndex  int
	snippet     string
	contentLang string
	tokenCount  int
	metadata    domchunk.Metadata
	similarity  float64
}

// NewCitation creates a citation.
func NewCitation(
	chunkID, documentID string, chunkIndex int,
	snippet, contentLang string, tokenCount int,
	metadata domchunk.Metadata, similarity float64,
) Citation {
	return Citation{
		chunkID:     chunkID,
		documentID:  documentID,
		chunkIndex:  chunkIndex,
		snippet:     snippet,
		contentLang: contentLang,
		tokenCount:  tokenCount,
		metadata:    metadata,
		similarity:  similarity,
	}
}

// ChunkID returns the cited chunk identifier.
func (c Citation) ChunkID() string { return c.chunkID }

// DocumentID returns the document the chunk belongs to.
func (c Citation) DocumentID() string { return c.documentID }

// ChunkIndex returns the chunk position within its document.
func (c Citation) ChunkIndex() int { return c.chunkIndex }

// Snippet returns a short excerpt of the chunk content.
func (c Citation) Snippet() string { return c.snippet }

// ContentLang returns the language tag of the cited content.
func (c Citation) ContentLang() string { return c.contentLang }

// TokenCount returns the approximate token length of the cited chunk.
func (c Citation) TokenCount() int { return c.tokenCount }

// Metadata returns the chunk metadata (source text offsets).
func (c Citation) Metadata() domchunk.Metadata { return c.metadata }

// Similarity returns the cosine similarity to the query.
func (c Citation) Similarity() float64 { return c.similarity }

// Meta describes how a retrieval result was produced.
type Meta struct {
	strategy           string
	topKRequested      int
	topKReturned       int
	queryChars         int
	contextChars       int
	embeddingDimension int
	warnings           []string
}

// NewMeta creates retrieval metadata.
func NewMeta(strategy string, topKRequested, topKReturned, queryChars, contextChars, embeddingDimension int, warnings []string) Meta {
	return Meta{
		strategy:           strategy,
		topKRequested:      topKRequested,
		topKReturned:       topKReturned,
		queryChars:         queryChars,
		contextChars:       contextChars,
		embeddingDimension: embeddingDimension,
		warnings:           warnings,
	}
}

// Strategy returns the retrieval strategy name.
func (m Meta) Strategy() string { return m.strategy }

// TopKRequested returns the requested result count.
func (m Meta) TopKRequested() int { return m.topKRequested }

// TopKReturned returns the actual result count.
func (m Meta) TopKReturned() int { return m.topKReturned }

// QueryChars returns the query length in runes.
func (m Meta) QueryChars() int { return m.queryChars }

// ContextChars returns the assembled context length in runes.
func (m Meta) ContextChars() int { return m.contextChars }

// EmbeddingDimension returns the vector width used for the query.
func (m Meta) EmbeddingDimension() int { return m.embeddingDimension }

// Warnings returns non-fatal notes about the retrieval.
func (m Meta) Warnings() []string { return m.warnings }

// Result is the outcome of one retrieval call.
//
// ContextText is ordered by document position (ascending chunk index) so the
// prompt reads coherently; Citations keep descending similarity order so the
// caller sees the strongest match first. The two orders differ on purpose.
type Result struct {
	contextText string
	citations   []Citation
	meta        Meta
}

// NewResult creates a retrieval result.
func NewResult(contextText string, citations []Citation, meta Meta) Result {
	return Result{contextText: contextText, citations: citations, meta: meta}
}

// ContextText returns the concatenated chunk contents in document order.
func (r Result) ContextText() string { return r.contextText }

// Citations returns the retrieved chunks in descending similarity order.
func (r Result) Citations() []Citation { return r.citations }

// Meta returns the retrieval metadata.
func (r Result) Meta() Meta { return r.meta }
