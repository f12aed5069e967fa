// Package api provides the HTTP client for the storefront backend: the
// product API, the order API and the token-gated admin API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Config configures the API client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the storefront backend. It never retries: a failed
// request is reported once and any retry is up to the user.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	metrics    *telemetry.Metrics
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records request metrics
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets a custom logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new API client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    u,
		headers: map[string]string{
			"Accept": "application/json",
		},
		logger: zap.NewNop(),
	}
	if cfg.UserAgent != "" {
		client.headers["User-Agent"] = cfg.UserAgent
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Request represents an HTTP request to be executed.
type Request struct {
	// Endpoint is the metrics label, e.g. "products.list"
	Endpoint    string
	Method      string
	Path        []string
	Headers     map[string]string
	Body        []byte
	ContentType string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do executes an HTTP request once. Transport failures (connection errors,
// timeouts, an unreadable body) are returned as NetworkError; any response
// that arrives is returned as-is regardless of status.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.buildURL(req.Path...)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	c.setHeaders(httpReq, req.Headers)
	httpReq.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	log := logger.Enrich(ctx, c.logger).With(
		zap.String("endpoint", req.Endpoint),
		zap.String("method", req.Method),
	)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		duration := time.Since(start)
		c.metrics.ObserveRequest(req.Endpoint, telemetry.OutcomeNetwork, duration)
		log.Warn("Request failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, shared.NewNetworkError(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	duration := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(req.Endpoint, telemetry.OutcomeNetwork, duration)
		log.Warn("Reading response failed", zap.Error(err))
		return nil, shared.NewNetworkError(fmt.Errorf("reading response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
		Duration:   duration,
	}

	outcome := telemetry.OutcomeOK
	if !resp.OK() {
		outcome = telemetry.OutcomeRejected
	}
	c.metrics.ObserveRequest(req.Endpoint, outcome, duration)
	log.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// doJSON sends body (if any) as JSON
func (c *Client) doJSON(ctx context.Context, endpoint, method string, body any, headers map[string]string, path ...string) (*Response, error) {
	req := Request{
		Endpoint: endpoint,
		Method:   method,
		Path:     path,
		Headers:  headers,
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		req.Body = data
		req.ContentType = "application/json"
	}
	return c.Do(ctx, req)
}

// buildURL appends escaped path segments to the base URL
func (c *Client) buildURL(segments ...string) *url.URL {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(strings.Trim(s, "/")))
	}
	return c.baseURL.JoinPath(escaped...)
}

// setHeaders sets the default and per-request headers
func (c *Client) setHeaders(req *http.Request, custom map[string]string) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range custom {
		req.Header.Set(k, v)
	}
}

// BaseURL returns the client's base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}
