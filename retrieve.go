package ragcore

import (
	"context"
	"fmt"

	domchunk "github.com/praxis-cloud/ragcore/internal/domain/chunk"
	domret "github.com/praxis-cloud/ragcore/internal/domain/retrieval"
	retrievaluc "github.com/praxis-cloud/ragcore/internal/usecase/retrieval"
)

// RetrieveOptions narrows a retrieval call. The zero value searches the
// whole organization with the default chunk count.
type RetrieveOptions struct {
	// DocumentID restricts the search to one document. Empty searches every
	// document of the organization.
	DocumentID string
	// TopK is the maximum number of chunks to return. Zero means the
	// default of 5; values over 50 are clamped.
	TopK int
}

// Retrieve embeds the query, finds the most similar chunks in the
// organization's scope, and assembles them into citations plus readable
// context text. A scope with no indexed chunks yields an empty result with
// a warning, not an error.
func (c *Client) Retrieve(ctx context.Context, organizationID, query string, opts *RetrieveOptions) (RetrievalResult, error) {
	if opts == nil {
		opts = &RetrieveOptions{}
	}
	topK := opts.TopK
	if topK == 0 {
		topK = retrievaluc.DefaultTopK
	}
	if topK > retrievaluc.MaxTopK {
		topK = retrievaluc.MaxTopK
	}

	res, err := c.retrievalSvc.Retrieve(ctx, retrievaluc.Request{
		OrganizationID: organizationID,
		DocumentID:     opts.DocumentID,
		QueryText:      query,
		TopK:           topK,
	})
	if err != nil {
		return RetrievalResult{}, fmt.Errorf("retrieve: %w", err)
	}
	return fromRetrievalResult(res), nil
}

func fromRetrievalResult(res domret.Result) RetrievalResult {
	citations := make([]Citation, len(res.Citations()))
	for i, cit := range res.Citations() {
		citations[i] = Citation{
			ChunkID:     cit.ChunkID(),
			DocumentID:  cit.DocumentID(),
			ChunkIndex:  cit.ChunkIndex(),
			Snippet:     cit.Snippet(),
			ContentLang: cit.ContentLang(),
			TokenCount:  cit.TokenCount(),
			Similarity:  cit.Similarity(),
			Metadata:    fromChunkMetadata(cit.Metadata()),
		}
	}

	meta := res.Meta()
	return RetrievalResult{
		ContextText: res.ContextText(),
		Citations:   citations,
		Meta: RetrievalMeta{
			Strategy:           meta.Strategy(),
			TopKRequested:      meta.TopKRequested(),
			TopKReturned:       meta.TopKReturned(),
			QueryChars:         meta.QueryChars(),
			ContextChars:       meta.ContextChars(),
			EmbeddingDimension: meta.EmbeddingDimension(),
			Warnings:           meta.Warnings(),
		},
	}
}

func fromChunkMetadata(m domchunk.Metadata) ChunkMetadata {
	return ChunkMetadata{
		StartOffset: m.StartOffset,
		EndOffset:   m.EndOffset,
		Extra:       m.Extra,
	}
}
