// Package taiga implements an authenticated HTTP client for the Taiga
// project-management REST API (v1).
package taiga

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taiga-contrib/taiga-mcp-go/pkg/observability"
)

const apiPrefix = "/api/v1"

// Client talks to one Taiga instance. It handles authentication (normal
// login plus token refresh on 401), retries transient failures with
// exponential backoff, and decodes JSON bodies. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	userAgent  string
	maxRetries uint64

	username string
	password string

	mu           sync.Mutex
	authToken    string
	refreshToken string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger; requests are traced at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics enables per-request metrics recording.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCredentials sets the username and password for normal login.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithToken sets a pre-issued auth token, bypassing login.
func WithToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// WithMaxRetries sets how many times a transient failure (network error,
// 429, 5xx) is retried before giving up.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates a Client for the Taiga instance at baseURL (without the
// /api/v1 suffix).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("taiga: base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
		tracer:     otel.Tracer("github.com/taiga-contrib/taiga-mcp-go/pkg/taiga"),
		userAgent:  "taiga-mcp-go",
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetJSON issues a GET and returns the decoded JSON body as-is: nil, a map,
// or a list. This is the read capability the pagination engine consumes.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values) (any, error) {
	return c.do(ctx, http.MethodGet, endpoint, query, nil)
}

// Get issues a GET expecting a single JSON object.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return asObject(raw, path)
}

// Post issues a POST with a JSON body, returning the decoded object (nil
// for empty answers).
func (c *Client) Post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return asObject(raw, path)
}

// Patch issues a PATCH with a JSON body, returning the decoded object.
func (c *Client) Patch(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return asObject(raw, path)
}

// Delete issues a DELETE. Taiga answers 204 on success.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func asObject(raw any, path string) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("taiga: unexpected response shape from %s", path)
	}
	return obj, nil
}

// do performs one API call: marshal, execute with retry and refresh-on-401,
// decode. Transport and status errors come back as-is or as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	reqURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("taiga: encode request body: %w", err)
		}
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("taiga.endpoint", path),
		))
	defer span.End()

	start := time.Now()
	status, respBody, err := c.execute(ctx, method, reqURL, payload, true)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordAPIRequest(method, status, elapsed)
	}
	c.logger.Debug("taiga api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status >= 400 {
		apiErr := newAPIError(status, respBody)
		span.SetStatus(codes.Error, apiErr.Detail)
		return nil, apiErr
	}

	if status == http.StatusNoContent || len(respBody) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("taiga: decode response from %s: %w", path, err)
	}
	return decoded, nil
}

// execute runs the request with backoff retry on transient failures and,
// when allowed, one re-authentication pass after a 401.
func (c *Client) execute(ctx context.Context, method, reqURL string, payload []byte, allowReauth bool) (int, []byte, error) {
	var resp *http.Response
	operation := func() error {
		req, err := c.newRequest(ctx, method, reqURL, payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			r.Body.Close()
			return fmt.Errorf("taiga: server returned %d for %s", r.StatusCode, method)
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("taiga: read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && allowReauth && c.canReauthenticate() {
		if err := c.reauthenticate(ctx); err != nil {
			c.logger.Warn("taiga re-authentication failed", zap.Error(err))
			return resp.StatusCode, respBody, nil
		}
		return c.execute(ctx, method, reqURL, payload, false)
	}

	return resp.StatusCode, respBody, nil
}

func (c *Client) newRequest(ctx context.Context, method, reqURL string, payload []byte) (*http.Request, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("taiga: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
