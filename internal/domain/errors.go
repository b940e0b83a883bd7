package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing document or chunk.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals a tenant mismatch. The message is identical for
	// every mismatch so callers cannot probe another tenant's data through
	// error shapes.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict signals a duplicate chunk position.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable signals an unreachable, unconfigured or timed-out
	// embedding dependency. Never retried inside the core.
	ErrUnavailable = errors.New("temporarily unavailable")
	// ErrValidation signals malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure that is
	// not an availability problem (malformed provider response and the like).
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// KeyPrefix namespaces every key ragcore writes to the usage store.
const KeyPrefix = "ragcore:"

// ChunkIndexConflictError wraps ErrConflict with the colliding position.
type ChunkIndexConflictError struct {
	DocumentID string
	ChunkIndex int
}

func (e *ChunkIndexConflictError) Error() string {
	return fmt.Sprintf("%s: duplicate chunk index %d for document %s",
		ErrConflict.Error(), e.ChunkIndex, e.DocumentID)
}

func (e *ChunkIndexConflictError) Unwrap() error { return ErrConflict }

// NewChunkIndexConflict creates a duplicate chunk position error.
func NewChunkIndexConflict(documentID string, chunkIndex int) error {
	return &ChunkIndexConflictError{DocumentID: documentID, ChunkIndex: chunkIndex}
}

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a field validation error.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
