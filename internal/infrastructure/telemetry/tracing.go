package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for engine and backend spans
const TracerName = "storefront"

// Span attribute keys
const (
	SpanAttrOrderID     = "order_id"
	SpanAttrOrderKind   = "order_kind"
	SpanAttrOrderStatus = "order_status"
	SpanAttrProductID   = "product_id"
	SpanAttrLineCount   = "line_count"
	SpanAttrOutcome     = "outcome"
	SpanAttrErrorCode   = "error.code"
	SpanAttrHTTPMethod  = "http.method"
	SpanAttrHTTPPath    = "http.path"
	SpanAttrHTTPStatus  = "http.status_code"
)

// SpanOption configures a span at start
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithAttribute adds an attribute; decimals are recorded as their exact string
func WithAttribute(key string, value any) SpanOption {
	return func(c *spanConfig) {
		c.attrs = append(c.attrs, toAttribute(key, value))
	}
}

// WithSpanKind sets the span kind; spans are internal by default
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) {
		c.kind = kind
	}
}

// StartSpan starts a span on the global provider. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "reconciler.void",
//		telemetry.WithAttribute(telemetry.SpanAttrOrderID, id))
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	cfg := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(cfg.kind),
		trace.WithAttributes(cfg.attrs...),
	)
}

// SetAttributes adds alternating key/value pairs to span; pairs whose key is
// not a string are skipped
//
//	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, created.ID)
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil || !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	span.SetAttributes(attrs...)
}

// RecordError records err on span. A domain rejection (stock, state, conflict,
// input) is an expected answer: it is recorded with its code and leaves the span
// status unset. Transient and untyped errors mark the span as failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		span.SetAttributes(attribute.String(SpanAttrErrorCode, domainErr.Code))
		if domainErr.Code != shared.CodeTransient {
			span.AddEvent("rejected", trace.WithAttributes(
				attribute.String(SpanAttrErrorCode, domainErr.Code),
				attribute.String("message", domainErr.Message),
			))
			return
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful
func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// GetTraceID returns the trace ID of the current span, or "" when none
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []int64:
		return attribute.Int64Slice(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case decimal.Decimal:
		return attribute.String(key, v.String())
	case time.Duration:
		return attribute.Float64(key, v.Seconds())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
