// Package httpapi is the thin JSON surface over the RAG services. Request
// validation schemas, auth and routing policy live in the platform gateway;
// this server only decodes, delegates and maps domain errors to statuses.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/praxis-cloud/ragcore/internal/domain"
	dombatch "github.com/praxis-cloud/ragcore/internal/domain/batch"
	domret "github.com/praxis-cloud/ragcore/internal/domain/retrieval"
	domusage "github.com/praxis-cloud/ragcore/internal/domain/usage"
	"github.com/praxis-cloud/ragcore/internal/logger"
	healthuc "github.com/praxis-cloud/ragcore/internal/usecase/health"
	ingestuc "github.com/praxis-cloud/ragcore/internal/usecase/ingest"
	retrievaluc "github.com/praxis-cloud/ragcore/internal/usecase/retrieval"
	usageuc "github.com/praxis-cloud/ragcore/internal/usecase/usage"
)

// ErrorCode is a machine-readable error identifier returned to API clients.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeForbidden              ErrorCode = "forbidden"
	CodeDocumentNotFound       ErrorCode = "document_not_found"
	CodeChunkConflict          ErrorCode = "chunk_conflict"
	CodeEmbeddingQuotaExceeded ErrorCode = "embedding_quota_exceeded"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeUnavailable            ErrorCode = "temporarily_unavailable"
	CodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// ReindexRequest is the body of POST /api/v1/documents/{documentID}/reindex.
type ReindexRequest struct {
	OrganizationID string `json:"organizationId"`
	SourceText     string `json:"sourceText"`
	ContentLang    string `json:"contentLang,omitempty"`
}

// ReindexResponse reports how many chunks replaced the previous index.
type ReindexResponse struct {
	DocumentID string `json:"documentId"`
	ChunkCount int    `json:"chunkCount"`
}

// BatchReindexItem is one document inside a batch reindex request.
type BatchReindexItem struct {
	DocumentID  string `json:"documentId"`
	SourceText  string `json:"sourceText"`
	ContentLang string `json:"contentLang,omitempty"`
}

// BatchReindexRequest is the body of POST /api/v1/documents:reindexBatch.
type BatchReindexRequest struct {
	OrganizationID string             `json:"organizationId"`
	Documents      []BatchReindexItem `json:"documents"`
}

// BatchResultItem is the per-document outcome of a batch reindex.
type BatchResultItem struct {
	DocumentID string         `json:"documentId"`
	Status     string         `json:"status"`
	ChunkCount int            `json:"chunkCount"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

// BatchReindexResponse summarizes a batch reindex run.
type BatchReindexResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// RetrievalRequest is the body of POST /api/v1/retrieval. DocumentID narrows
// the scope to one document; empty means the whole organization. TopK
// defaults to 5 when omitted and is clamped to 50.
type RetrievalRequest struct {
	OrganizationID string `json:"organizationId"`
	DocumentID     string `json:"documentId,omitempty"`
	QueryText      string `json:"queryText"`
	TopK           *int   `json:"topK,omitempty"`
}

// MetadataResponse carries the chunk's offsets into the source text.
type MetadataResponse struct {
	StartOffset int               `json:"startOffset"`
	EndOffset   int               `json:"endOffset"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// CitationResponse is one retrieved chunk with its provenance.
type CitationResponse struct {
	ChunkID     string           `json:"chunkId"`
	DocumentID  string           `json:"documentId"`
	ChunkIndex  int              `json:"chunkIndex"`
	Snippet     string           `json:"snippet"`
	ContentLang string           `json:"contentLang,omitempty"`
	TokenCount  int              `json:"tokenCount"`
	Metadata    MetadataResponse `json:"metadata"`
	Similarity  float64          `json:"similarity"`
}

// RetrievalMetaResponse describes how the context was assembled.
type RetrievalMetaResponse struct {
	Strategy           string   `json:"strategy"`
	TopKRequested      int      `json:"topKRequested"`
	TopKReturned       int      `json:"topKReturned"`
	QueryChars         int      `json:"queryChars"`
	ContextChars       int      `json:"contextChars"`
	EmbeddingDimension int      `json:"embeddingDimension"`
	Warnings           []string `json:"warnings,omitempty"`
}

// RetrievalResponse is the body returned by POST /api/v1/retrieval.
type RetrievalResponse struct {
	ContextText string                `json:"contextText"`
	Citations   []CitationResponse    `json:"citations"`
	Meta        RetrievalMetaResponse `json:"meta"`
}

// UsageMetrics is the consumption block of a usage report.
type UsageMetrics struct {
	EmbeddingRequests int  `json:"embeddingRequests"`
	BatchRequests     int  `json:"batchRequests"`
	Tokens            int  `json:"tokens"`
	CostMillidollars  *int `json:"costMillidollars,omitempty"`
}

// BudgetStatus is the budget block of a usage report.
type BudgetStatus struct {
	TokensLimit     int        `json:"tokensLimit"`
	TokensRemaining int        `json:"tokensRemaining"`
	IsExhausted     bool       `json:"isExhausted"`
	Action          string     `json:"action"`
	ResetsAt        *time.Time `json:"resetsAt,omitempty"`
}

// UsageResponse is the body returned by GET /api/v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider"`
	PeriodStartAt *time.Time   `json:"periodStartAt,omitempty"`
	PeriodEndAt   *time.Time   `json:"periodEndAt,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the RAG API.
type Server struct {
	ingest        *ingestuc.Service
	retrieval     *retrievaluc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	retrieval *retrievaluc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:    ingest,
		retrieval: retrieval,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		chunkConflictHandler,
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, CodeForbidden),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusTooManyRequests, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrUnavailable, http.StatusServiceUnavailable, CodeUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrVectorDimMismatch,
			http.StatusInternalServerError, CodeVectorDimMismatch),
	}
	return s
}

// Routes registers the API routes on the given router. Middleware belongs to
// the composition root.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents/{documentID}/reindex", s.ReindexDocument)
		r.Post("/documents:reindexBatch", s.ReindexBatch)
		r.Post("/retrieval", s.Retrieve)
		r.Get("/usage", s.GetUsage)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ReindexDocument handles POST /api/v1/documents/{documentID}/reindex.
func (s *Server) ReindexDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	var req ReindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	count, err := s.ingest.Reindex(ctx, ingestuc.Request{
		OrganizationID: req.OrganizationID,
		DocumentID:     documentID,
		SourceText:     req.SourceText,
		ContentLang:    req.ContentLang,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, ReindexResponse{
		DocumentID: documentID,
		ChunkCount: count,
	})
}

// ReindexBatch handles POST /api/v1/documents:reindexBatch.
func (s *Server) ReindexBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchReindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > ingestuc.MaxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", ingestuc.MaxBatchSize))
		return
	}

	items := make([]ingestuc.Item, len(req.Documents))
	for i, d := range req.Documents {
		items[i] = ingestuc.Item{
			DocumentID:  d.DocumentID,
			SourceText:  d.SourceText,
			ContentLang: d.ContentLang,
		}
	}

	results := s.ingest.ReindexMany(r.Context(), req.OrganizationID, items)

	succeeded, failed := 0, 0
	out := make([]BatchResultItem, len(results))
	for i, res := range results {
		out[i] = batchResultToItem(res)
		if res.Status() == dombatch.StatusOK {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, BatchReindexResponse{
		Items:     out,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

// Retrieve handles POST /api/v1/retrieval.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrievalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := retrievaluc.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK > retrievaluc.MaxTopK {
		topK = retrievaluc.MaxTopK
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.retrieval.Retrieve(ctx, retrievaluc.Request{
		OrganizationID: req.OrganizationID,
		DocumentID:     req.DocumentID,
		QueryText:      req.QueryText,
		TopK:           topK,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, retrievalToResponse(res))
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	switch r.URL.Query().Get("period") {
	case "day":
		period = domusage.PeriodDay
	case "total":
		period = domusage.PeriodTotal
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period:   string(report.Period()),
		Provider: report.Provider(),
		Usage: UsageMetrics{
			EmbeddingRequests: report.Metrics().EmbeddingRequests(),
			BatchRequests:     report.Metrics().BatchRequests(),
			Tokens:            report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
			Action:          string(report.Budget().ExhaustionAction()),
		},
	}

	if report.Metrics().CostMillidollars() > 0 {
		cost := report.Metrics().CostMillidollars()
		resp.Usage.CostMillidollars = &cost
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrConflict,
		domain.ErrUnavailable,
		domain.ErrValidation,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler surfaces the offending field for typed validation errors.
func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    CodeValidationFailed,
			Message: ve.Reason,
			Field:   ve.Field,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
	return true
}

// chunkConflictHandler handles duplicate chunk positions with the colliding index.
func chunkConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrConflict) {
		return false
	}
	var cce *domain.ChunkIndexConflictError
	if errors.As(err, &cce) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":       CodeChunkConflict,
			"message":    msg,
			"documentId": cce.DocumentID,
			"chunkIndex": cce.ChunkIndex,
		})
		return true
	}
	writeError(w, http.StatusConflict, CodeChunkConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func retrievalToResponse(res domret.Result) RetrievalResponse {
	citations := make([]CitationResponse, len(res.Citations()))
	for i, c := range res.Citations() {
		citations[i] = CitationResponse{
			ChunkID:     c.ChunkID(),
			DocumentID:  c.DocumentID(),
			ChunkIndex:  c.ChunkIndex(),
			Snippet:     c.Snippet(),
			ContentLang: c.ContentLang(),
			TokenCount:  c.TokenCount(),
			Metadata: MetadataResponse{
				StartOffset: c.Metadata().StartOffset,
				EndOffset:   c.Metadata().EndOffset,
				Extra:       c.Metadata().Extra,
			},
			Similarity: c.Similarity(),
		}
	}

	meta := res.Meta()
	return RetrievalResponse{
		ContextText: res.ContextText(),
		Citations:   citations,
		Meta: RetrievalMetaResponse{
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

func batchResultToItem(r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		DocumentID: r.DocumentID(),
		Status:     string(r.Status()),
		ChunkCount: r.ChunkCount(),
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, domain.ErrNotFound):
		return CodeDocumentNotFound
	case errors.Is(err, domain.ErrConflict):
		return CodeChunkConflict
	case errors.Is(err, domain.ErrValidation):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return CodeVectorDimMismatch
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return CodeEmbeddingQuotaExceeded
	case errors.Is(err, domain.ErrUnavailable):
		return CodeUnavailable
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return CodeEmbeddingProviderError
	default:
		return CodeInternalError
	}
}
