// Package openrouter is the typed client for the upstream model catalog
// and embedding provider. It normalizes transport failures into the
// unit error taxonomy and never retries.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/modelscout/modelscout/pkg/unit"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// EmbedBatchSize is the upstream limit on texts per embeddings call.
	EmbedBatchSize = 100
)

// placeholderKeys are sample values that show up in copied configs.
// They count as "no credential", not as an auth failure.
var placeholderKeys = map[string]bool{
	"your-api-key":      true,
	"your-api-key-here": true,
	"changeme":          true,
	"sk-or-v1-xxxx":     true,
}

type Client struct {
	baseURL      string
	key          string
	httpClient   *http.Client
	embedLimiter *rate.Limiter
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEmbedRate overrides the embedding-call rate limit (calls/second).
func WithEmbedRate(callsPerSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.embedLimiter = rate.NewLimiter(rate.Limit(callsPerSecond), burst)
	}
}

func NewClient(key string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		key:     key,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		// Embedding generation is expensive and rate-limited upstream;
		// keep batches paced instead of firing them back to back.
		embedLimiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAuth reports whether a usable credential is configured. Empty and
// placeholder keys count as absent.
func (c *Client) HasAuth() bool {
	key := strings.TrimSpace(c.key)
	if key == "" || placeholderKeys[strings.ToLower(key)] {
		return false
	}
	return len(key) >= 8
}

func (c *Client) requireAuth(operation string) error {
	if c.HasAuth() {
		return nil
	}
	return unit.NewErrorWithDetails(unit.ErrCodeAuthRequired,
		fmt.Sprintf("%s requires an API key", operation),
		map[string]any{"hint": "set OPENROUTER_API_KEY or provider.api_key in the config file"})
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.HasAuth() {
		httpReq.Header.Set("Authorization", "Bearer "+c.key)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return unit.NewErrorWithDetails(unit.ErrCodeNetwork,
			"provider call failed", err.Error())
	}
	defer httpResp.Body.Close()

	respData, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return unit.NewErrorWithDetails(unit.ErrCodeNetwork,
			"read provider response", err.Error())
	}

	if httpResp.StatusCode >= 400 {
		message := "provider returned an error"
		var errResp errorResponse
		if json.Unmarshal(respData, &errResp) == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return unit.NewErrorWithDetails(unit.ErrCodeUpstream, message, map[string]any{
			"status": httpResp.StatusCode,
			"body":   string(respData),
		})
	}

	if respBody != nil {
		if err := json.Unmarshal(respData, respBody); err != nil {
			return unit.NewErrorWithDetails(unit.ErrCodeUpstream,
				"decode provider response", err.Error())
		}
	}

	return nil
}

// ListModels fetches the full catalog. Works without credentials.
func (c *Client) ListModels(ctx context.Context) (*ListModelsResult, error) {
	var resp modelsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/models", nil, &resp); err != nil {
		return nil, err
	}
	return &ListModelsResult{Models: resp.Data, AuthUsed: c.HasAuth()}, nil
}

// baseModelID strips a :variant suffix; the upstream endpoint and
// parameter routes only know base identifiers.
func baseModelID(modelID string) string {
	if idx := strings.Index(modelID, ":"); idx >= 0 {
		return modelID[:idx]
	}
	return modelID
}

// ListEndpoints fetches the hosted endpoints for one model. Requires
// credentials.
func (c *Client) ListEndpoints(ctx context.Context, modelID string) (*ListEndpointsResult, error) {
	if err := c.requireAuth("listing model endpoints"); err != nil {
		return nil, err
	}

	var resp endpointsResponse
	path := "/models/" + baseModelID(modelID) + "/endpoints"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &ListEndpointsResult{Endpoints: resp.Data.Endpoints, AuthUsed: true}, nil
}

// ListParameters fetches the supported-parameter detail for one model.
// Requires credentials.
func (c *Client) ListParameters(ctx context.Context, modelID string) (*ListParametersResult, error) {
	if err := c.requireAuth("listing model parameters"); err != nil {
		return nil, err
	}

	var resp parametersResponse
	path := "/parameters/" + baseModelID(modelID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &ListParametersResult{Parameters: resp.Data.SupportedParameters, AuthUsed: true}, nil
}

// Embed converts texts into vectors using the given embedding model.
// Requests are chunked at EmbedBatchSize; a failing batch leaves nil
// vectors for its texts and sets Err, but vectors from batches that
// already succeeded are kept.
func (c *Client) Embed(ctx context.Context, texts []string, embeddingModel string) (*EmbedResult, error) {
	if err := c.requireAuth("generating embeddings"); err != nil {
		return nil, err
	}

	result := &EmbedResult{
		Vectors:  make([][]float64, len(texts)),
		AuthUsed: true,
	}

	for start := 0; start < len(texts); start += EmbedBatchSize {
		end := min(start+EmbedBatchSize, len(texts))

		if err := c.embedLimiter.Wait(ctx); err != nil {
			if result.Err == nil {
				result.Err = err
			}
			break
		}

		req := embeddingsRequest{Model: embeddingModel, Input: texts[start:end]}
		var resp embeddingsResponse
		if err := c.doRequest(ctx, http.MethodPost, "/embeddings", req, &resp); err != nil {
			if result.Err == nil {
				result.Err = err
			}
			continue
		}

		// Upstream ordering is not guaranteed to match input order.
		sort.Slice(resp.Data, func(i, j int) bool {
			return resp.Data[i].Index < resp.Data[j].Index
		})
		for _, datum := range resp.Data {
			if datum.Index >= 0 && start+datum.Index < end {
				result.Vectors[start+datum.Index] = datum.Embedding
			}
		}
	}

	return result, nil
}
