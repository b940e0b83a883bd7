package ragcore

import (
	"context"
	"fmt"

	dombatch "github.com/praxis-cloud/ragcore/internal/domain/batch"
	documentrepo "github.com/praxis-cloud/ragcore/internal/repository/document"
	ingestuc "github.com/praxis-cloud/ragcore/internal/usecase/ingest"
)

// RegisterDocument writes the ownership row that ties a document to its
// organization. Reindex and Retrieve refuse documents the subsystem has not
// seen; call this once when the platform creates the document. Registering
// an existing document moves it to the given organization.
func (c *Client) RegisterDocument(ctx context.Context, organizationID, documentID string) error {
	err := c.docs.Register(ctx, documentrepo.Ref{
		ID:             documentID,
		OrganizationID: organizationID,
	})
	if err != nil {
		return fmt.Errorf("register document: %w", err)
	}
	return nil
}

// Reindex replaces the indexed chunks of one document with a fresh split and
// embedding of sourceText. The swap is atomic: concurrent retrievals see the
// old chunks or the new ones, never a mix. An empty sourceText removes the
// document from retrieval. Returns the number of chunks written.
func (c *Client) Reindex(ctx context.Context, organizationID, documentID, sourceText, contentLang string) (int, error) {
	count, err := c.ingestSvc.Reindex(ctx, ingestuc.Request{
		OrganizationID: organizationID,
		DocumentID:     documentID,
		SourceText:     sourceText,
		ContentLang:    contentLang,
	})
	if err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	return count, nil
}

// ReindexMany reindexes documents of one organization sequentially and
// reports a per-document outcome. Failed documents do not stop the batch,
// except quota exhaustion and provider outages, which fail the remainder.
func (c *Client) ReindexMany(ctx context.Context, organizationID string, items []ReindexItem) []ReindexItemResult {
	ucItems := make([]ingestuc.Item, len(items))
	for i, it := range items {
		ucItems[i] = ingestuc.Item{
			DocumentID:  it.DocumentID,
			SourceText:  it.SourceText,
			ContentLang: it.ContentLang,
		}
	}
	return fromBatchResults(c.ingestSvc.ReindexMany(ctx, organizationID, ucItems))
}

func fromBatchResults(results []dombatch.Result) []ReindexItemResult {
	out := make([]ReindexItemResult, len(results))
	for i, r := range results {
		out[i] = ReindexItemResult{
			DocumentID: r.DocumentID(),
			ChunkCount: r.ChunkCount(),
			Err:        r.Err(),
		}
	}
	return out
}
