// Package ragcore provides an HTTP client for a remote ragcore deployment.
//
// It mirrors the service's REST API: reindex documents, retrieve
// citation-backed context, read embedding usage and budget state, and check
// deployment health. Errors unwrap to the same sentinels the embedded
// client uses, so callers switch between the two without changing their
// error handling.
//
// # Reindex and retrieve
//
//	client, _ := ragcore.NewClient(ragcore.WithBaseURL("http://rag.internal:8080"))
//	_, _ = client.Reindex(ctx, ragcore.ReindexRequest{
//	    DocumentID:     "case-4012/motion-2",
//	    OrganizationID: "org-acme",
//	    SourceText:     text,
//	    ContentLang:    "ru",
//	})
//	res, _ := client.Retrieve(ctx, ragcore.RetrieveRequest{
//	    OrganizationID: "org-acme",
//	    QueryText:      "сроки обжалования решения",
//	    TopK:           8,
//	})
//	for _, c := range res.Citations {
//	    fmt.Println(c.DocumentID, c.ChunkIndex, c.Snippet)
//	}
//
// # Error handling
//
//	_, err := client.Retrieve(ctx, req)
//	switch {
//	case errors.Is(err, ragcore.ErrEmbeddingQuotaExceeded):
//	    // back off until the budget window resets
//	case errors.Is(err, ragcore.ErrUnavailable):
//	    // retry with a delay
//	}
package ragcore
