package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrNotFound        = errors.New("db: record not found")
	ErrUniqueViolation = errors.New("db: unique constraint violation")
	ErrKeyNotFound     = errors.New("db: key not found")
)

// Op constants name the failing operation for error context. SQL ops use the
// facade method name, KV ops the Redis command name.
const (
	OpInsertChunks  = "InsertChunks"
	OpReplaceChunks = "ReplaceDocumentChunks"
	OpSearchSimilar = "SearchSimilar"
	OpListChunks    = "ListDocumentChunks"
	OpGetDocOwner   = "GetDocumentOwner"
	OpUpsertDoc     = "UpsertDocument"
	OpMigrate       = "Migrate"
	OpPing          = "Ping"

	OpGet    = "GET"
	OpIncrBy = "INCRBY"
	OpExpire = "EXPIRE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
