package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of reindexing one document in a batch call.
type Result struct {
	documentID string
	status     ItemStatus
	chunkCount int
	err        error
}

// NewOK creates a successful batch result.
func NewOK(documentID string, chunkCount int) Result {
	return Result{documentID: documentID, status: StatusOK, chunkCount: chunkCount}
}

// NewError creates a failed batch result.
func NewError(documentID string, err error) Result {
	return Result{documentID: documentID, status: StatusError, err: err}
}

// DocumentID returns the document identifier.
func (r Result) DocumentID() string { return r.documentID }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// ChunkCount returns the number of chunks written, zero on error.
func (r Result) ChunkCount() int { return r.chunkCount }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
