// Package backend is the REST client of the authoritative store backend.
// Everything the backend returns passes through the normalisation layer in
// normalize.go before it reaches the domain.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// Config holds the backend connection settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	APIToken  string
	UserAgent string
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("backend: base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("backend: base URL %q must be http or https", c.BaseURL)
	}
	return nil
}

// Client talks to the backend. It never retries: a failed commit or void must be
// re-triggered by the user so stock is never mutated twice.
type Client struct {
	config     Config
	httpClient *http.Client
	metrics    *telemetry.BackendMetrics
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithMetrics records request latency and failures
func WithMetrics(m *telemetry.BackendMetrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a backend client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "storefront-bff"
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("backend")
	return c, nil
}

// request describes one backend call
type request struct {
	method string
	path   string
	// endpoint is the low-cardinality route used for spans and metrics, e.g. "POST /sales/{id}/void"
	endpoint string
	body     any
	// mutating calls carry an Idempotency-Key so the backend can drop a duplicate submission
	mutating bool
}

// do performs the request and returns the raw response body of a 2xx answer.
// Non-2xx answers and transport failures are mapped to domain errors.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend "+r.endpoint,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrHTTPMethod, r.method),
		telemetry.WithAttribute(telemetry.SpanAttrHTTPPath, r.path),
	)
	defer span.End()

	var reqBody io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("backend: failed to encode %s payload: %w", r.endpoint, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.config.BaseURL+r.path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("backend: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}
	if r.mutating {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Observe(ctx, r.endpoint, 0, time.Since(start))
		telemetry.RecordError(span, err)
		logger.WithTraceContext(ctx, c.logger).Warn("backend unreachable",
			zap.String("endpoint", r.endpoint),
			zap.Error(err),
		)
		return nil, &shared.DomainError{
			Code:    shared.CodeTransient,
			Message: fmt.Sprintf("Backend unavailable for %s, please retry", r.endpoint),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.Observe(ctx, r.endpoint, resp.StatusCode, time.Since(start))
	telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, resp.StatusCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, &shared.DomainError{
			Code:    shared.CodeTransient,
			Message: fmt.Sprintf("Backend response for %s was interrupted, please retry", r.endpoint),
		}
	}

	if resp.StatusCode >= 300 {
		mapped := mapStatus(resp.StatusCode, body, r.endpoint)
		telemetry.RecordError(span, mapped)
		return nil, mapped
	}

	telemetry.SetOK(span)
	return body, nil
}

// doJSON performs the request and decodes the body into a generic record tree
func (c *Client) doJSON(ctx context.Context, r request) (any, error) {
	body, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	v, err := decodeTree(body)
	if err != nil {
		return nil, &shared.DomainError{
			Code:    shared.CodeTransient,
			Message: fmt.Sprintf("Backend returned an unreadable answer for %s", r.endpoint),
		}
	}
	return v, nil
}

// mapStatus turns a non-2xx status into a domain error carrying the backend's message
func mapStatus(status int, body []byte, endpoint string) error {
	msg := backendMessage(body)

	var code string
	switch {
	case status == http.StatusNotFound:
		code = shared.CodeNotFound
	case status == http.StatusConflict:
		code = shared.CodeConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		code = shared.CodeInvalidInput
		if looksLikeStockFailure(msg) {
			code = shared.CodeInsufficientStock
		}
	case status >= 500, status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		code = shared.CodeTransient
	default:
		code = shared.CodeInvalidState
	}

	if msg == "" {
		msg = fmt.Sprintf("Backend rejected %s with HTTP %d", endpoint, status)
	}
	return &shared.DomainError{Code: code, Message: msg}
}

// backendMessage extracts a human-readable message from an error body
func backendMessage(body []byte) string {
	v, err := decodeTree(body)
	if err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	rec, ok := asRecord(v)
	if !ok {
		return ""
	}
	if nested, ok := asRecord(rec.raw("error")); ok {
		rec = nested
	}
	return rec.str("message", "mensaje", "error", "detail", "msg")
}

func looksLikeStockFailure(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "stock") || strings.Contains(m, "existencia") || strings.Contains(m, "inventario")
}
