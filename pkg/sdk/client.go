package ragcore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-cloud/ragcore/internal/version"
)

const (
	defaultBaseURL = "http://localhost:8080"
	defaultTimeout = 30 * time.Second

	// errorBodyLimit bounds how much of an error response is read.
	errorBodyLimit = 1 << 20
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	userAgent  string
}

// WithBaseURL points the client at a ragcore deployment.
// Default: http://localhost:8080.
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithTimeout sets the per-request timeout. Default: 30s. Ignored when
// WithHTTPClient supplies a client with its own timeout.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the underlying HTTP client (custom transports,
// proxies, instrumentation).
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// Client is an HTTP client for a remote ragcore deployment.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a ragcore API client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	base, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, fmt.Errorf("ragcore: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("ragcore: base URL %q must be http or https", cfg.baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}
	ua := cfg.userAgent
	if ua == "" {
		ua = "ragcore-sdk/" + version.Version
	}

	return &Client{
		baseURL:    strings.TrimRight(base.String(), "/"),
		userAgent:  ua,
		httpClient: hc,
	}, nil
}

// Reindex replaces the chunk index of one document with a fresh split and
// embedding of the source text. An empty source text removes the document
// from retrieval.
func (c *Client) Reindex(ctx context.Context, req ReindexRequest) (*ReindexResult, error) {
	if req.DocumentID == "" {
		return nil, fmt.Errorf("ragcore: documentId is required: %w", ErrValidation)
	}

	path := "/api/v1/documents/" + url.PathEscape(req.DocumentID) + "/reindex"
	var result ReindexResult
	header, err := c.do(ctx, http.MethodPost, path, req, &result)
	if err != nil {
		return nil, err
	}
	result.EmbeddingTokens = embeddingTokens(header)
	return &result, nil
}

// ReindexBatch reindexes several documents of one organization in a single
// call. Per-document outcomes are reported in the result; a failed document
// does not fail the call.
func (c *Client) ReindexBatch(ctx context.Context, req ReindexBatchRequest) (*ReindexBatchResult, error) {
	var result ReindexBatchResult
	header, err := c.do(ctx, http.MethodPost, "/api/v1/documents:reindexBatch", req, &result)
	if err != nil {
		return nil, err
	}
	result.EmbeddingTokens = embeddingTokens(header)
	return &result, nil
}

// Retrieve embeds the query, finds the most similar chunks in the
// organization's scope, and returns citations plus assembled context text.
func (c *Client) Retrieve(ctx context.Context, req RetrieveRequest) (*RetrieveResult, error) {
	var result RetrieveResult
	header, err := c.do(ctx, http.MethodPost, "/api/v1/retrieval", req, &result)
	if err != nil {
		return nil, err
	}
	result.EmbeddingTokens = embeddingTokens(header)
	return &result, nil
}

// Usage returns the embedding usage report for the given period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (*UsageReport, error) {
	path := "/api/v1/usage"
	if period != "" {
		path += "?period=" + url.QueryEscape(string(period))
	}
	var report UsageReport
	if _, err := c.do(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health reports the health of the deployment's components. A degraded
// deployment answers 503 with a full report; that is returned as a result,
// not an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, http.MethodGet, "/health", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, parseAPIError(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("ragcore: decode health response: %w", err)
	}
	return &status, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("ragcore: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ragcore: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	// The server's request-id middleware reuses an incoming id, so responses
	// and server logs correlate with this client call.
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do runs one request and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (http.Header, error) {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.Header, parseAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("ragcore: decode response: %w", err)
		}
	}
	return resp.Header, nil
}

// transportError maps connection-level failures. Context cancellation keeps
// its own identity; everything else is the service being unreachable.
func transportError(ctx context.Context, method, path string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("ragcore: %s %s: %w", method, path, ctx.Err())
	}
	return fmt.Errorf("ragcore: %s %s: %v: %w", method, path, err, ErrUnavailable)
}

func embeddingTokens(header http.Header) int {
	n, err := strconv.Atoi(header.Get("X-Embedding-Tokens"))
	if err != nil {
		return 0
	}
	return n
}
