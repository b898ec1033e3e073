package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey struct{}

// requestScope is what GinMiddleware leaves in the request context
type requestScope struct {
	log       *zap.Logger
	requestID string
}

func scopeOf(ctx context.Context) (requestScope, bool) {
	s, ok := ctx.Value(ctxKey{}).(requestScope)
	return s, ok
}

// WithContext stores log in ctx, keeping any request id already there
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	s, _ := scopeOf(ctx)
	s.log = log
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if s, ok := scopeOf(ctx); ok && s.log != nil {
		return s.log
	}
	return zap.NewNop()
}

// WithRequestID tags log with the request id and stores both in ctx. The id is
// forwarded to the backend by the REST client.
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	tagged := log.With(zap.String("request_id", requestID))
	return context.WithValue(ctx, ctxKey{}, requestScope{log: tagged, requestID: requestID}), tagged
}

// GetRequestID returns the request id stored by WithRequestID, or ""
func GetRequestID(ctx context.Context) string {
	s, _ := scopeOf(ctx)
	return s.requestID
}

// WithTraceContext adds trace_id and span_id of the active span; log is
// returned unchanged when ctx carries no valid span
func WithTraceContext(ctx context.Context, log *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.Stringer("trace_id", sc.TraceID()),
		zap.Stringer("span_id", sc.SpanID()),
	)
}

// L is the request logger of ctx with trace ids attached.
//
//	logger.L(ctx).Info("sale voided", zap.Int64("order_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
