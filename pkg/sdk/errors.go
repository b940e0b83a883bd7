package ragcore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/praxis-cloud/ragcore/internal/domain"
)

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

// API error codes returned by the service.
const (
	CodeBadRequest             = "bad_request"
	CodeValidationFailed       = "validation_failed"
	CodeForbidden              = "forbidden"
	CodeDocumentNotFound       = "document_not_found"
	CodeChunkConflict          = "chunk_conflict"
	CodeEmbeddingQuotaExceeded = "embedding_quota_exceeded"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeUnavailable            = "temporarily_unavailable"
	CodeVectorDimMismatch      = "vector_dim_mismatch"
	CodeInternalError          = "internal_error"
)

// APIError is a non-2xx response from the service. It unwraps to the
// sentinel matching its code, so errors.Is(err, ErrNotFound) and friends
// work on SDK errors the same way they do on the embedded client.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// Field names the offending request field on validation failures.
	Field string
	// DocumentID and ChunkIndex are set on chunk_conflict responses.
	DocumentID string
	ChunkIndex int
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ragcore: %s (%d): %s: %s", e.Code, e.StatusCode, e.Field, e.Message)
	}
	return fmt.Sprintf("ragcore: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return sentinelForCode(e.Code) }

// ErrorDetail is the per-document error of a batch reindex item.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Sentinel returns the sentinel error matching the detail's code, or nil
// for codes without one.
func (d *ErrorDetail) Sentinel() error { return sentinelForCode(d.Code) }

func sentinelForCode(code string) error {
	switch code {
	case CodeBadRequest, CodeValidationFailed:
		return ErrValidation
	case CodeForbidden:
		return ErrForbidden
	case CodeDocumentNotFound:
		return ErrNotFound
	case CodeChunkConflict:
		return ErrConflict
	case CodeEmbeddingQuotaExceeded:
		return ErrEmbeddingQuotaExceeded
	case CodeEmbeddingProviderError:
		return ErrEmbeddingProviderError
	case CodeUnavailable:
		return ErrUnavailable
	case CodeVectorDimMismatch:
		return ErrVectorDimMismatch
	default:
		return nil
	}
}

// parseAPIError decodes the service's error envelope. Bodies that are not
// the expected JSON still produce an APIError carrying the HTTP status.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		Field      string `json:"field"`
		DocumentID string `json:"documentId"`
		ChunkIndex int    `json:"chunkIndex"`
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err == nil && json.Unmarshal(body, &envelope) == nil {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
		apiErr.Field = envelope.Field
		apiErr.DocumentID = envelope.DocumentID
		apiErr.ChunkIndex = envelope.ChunkIndex
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
