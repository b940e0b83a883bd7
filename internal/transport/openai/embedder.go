package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/praxis-cloud/ragcore/internal/domain"
	"github.com/praxis-cloud/ragcore/internal/metrics"
)

// Embedder is an embedding provider using the OpenAI-compatible API (e.g. Nebius).
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider. Without an API
// key the embedder is unconfigured: every call fails with ErrUnavailable.
func NewEmbedder(cfg *Config) *Embedder {
	e := &Embedder{
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
	if cfg.APIKey == "" {
		return e
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	e.client = openai.NewClientWithConfig(clientCfg)
	return e
}

// Embed implements domain.Embedder. Returns the vector and usage with transport-level metrics.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	resp, err := e.request(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	vec := resp.Data[0].Embedding
	if err := domain.ValidateDimension(vec); err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), "dim_mismatch").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embedding width: %w", err)
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder with a single API request for the
// whole batch. Either every input gets a valid vector or the call fails.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	resp, err := e.request(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	// Положение вектора определяет Index из ответа, не порядок элементов.
	embeddings := make([][]float32, len(texts))
	for i := range resp.Data {
		idx := resp.Data[i].Index
		if idx < 0 || idx >= len(texts) || embeddings[idx] != nil {
			metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), "index_mismatch").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embedding index %d out of place in batch of %d: %w",
				idx, len(texts), domain.ErrEmbeddingProviderError)
		}
		embeddings[idx] = resp.Data[i].Embedding
	}

	for i := range embeddings {
		if err := domain.ValidateDimension(embeddings[i]); err != nil {
			metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), "dim_mismatch").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embedding %d width: %w", i, err)
		}
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// request issues one CreateEmbeddings call for the given inputs and maps
// failures to the domain taxonomy. On success resp.Data holds exactly one
// entry per input.
func (e *Embedder) request(ctx context.Context, input []string) (openai.EmbeddingResponse, error) {
	if e.client == nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), "not_configured").Inc()
		return openai.EmbeddingResponse{}, fmt.Errorf("embedding provider is not configured: %w", domain.ErrUnavailable)
	}

	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		mapped := parseAPIError(err)
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), errorLabel(mapped)).Inc()
		return openai.EmbeddingResponse{}, mapped
	}

	if len(resp.Data) != len(input) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), "count_mismatch").Inc()
		return openai.EmbeddingResponse{}, fmt.Errorf("provider returned %d embeddings for %d inputs: %w",
			len(resp.Data), len(input), domain.ErrEmbeddingProviderError)
	}

	// Record success metrics
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, string(e.model)).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, string(e.model), "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, string(e.model), "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if e.client == nil {
		return fmt.Errorf("embedding provider is not configured: %w", domain.ErrUnavailable)
	}
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// Outages, throttling and bad credentials map to ErrUnavailable; other
// provider rejections map to ErrEmbeddingProviderError.
func parseAPIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("embedding request timed out: %w", domain.ErrUnavailable)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, classify(reqErr.HTTPStatusCode))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, classify(apiErr.HTTPStatusCode))
	}

	// No HTTP response at all: DNS failure, refused connection, broken pipe.
	return fmt.Errorf("embedding provider unreachable: %v: %w", err, domain.ErrUnavailable)
}

// classify maps an HTTP status to the domain condition. Misconfigured
// credentials count as unavailable: the dependency cannot serve until the
// deployment is fixed, the data is fine.
func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrUnavailable
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return domain.ErrUnavailable
	case status >= http.StatusInternalServerError:
		return domain.ErrUnavailable
	default:
		return domain.ErrEmbeddingProviderError
	}
}

func errorLabel(err error) string {
	if errors.Is(err, domain.ErrUnavailable) {
		return "unavailable"
	}
	return "api_error"
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
