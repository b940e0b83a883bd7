package ragcore

import "github.com/praxis-cloud/ragcore/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrForbidden              = domain.ErrForbidden
	ErrConflict               = domain.ErrConflict
	ErrUnavailable            = domain.ErrUnavailable
	ErrValidation             = domain.ErrValidation
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
