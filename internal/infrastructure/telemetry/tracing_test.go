package telemetry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "reconciler.void",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, int64(42)),
		telemetry.WithAttribute("total", decimal.RequireFromString("52360.00")),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, "already_voided", telemetry.SpanAttrLineCount, 2, 99, "skipped")
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "reconciler.void", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := spans[0].Attributes()
	v, ok := attrValue(attrs, telemetry.SpanAttrOrderID)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.AsInt64())
	v, ok = attrValue(attrs, "total")
	require.True(t, ok)
	assert.Equal(t, "52360", v.AsString())
	v, ok = attrValue(attrs, telemetry.SpanAttrOutcome)
	require.True(t, ok)
	assert.Equal(t, "already_voided", v.AsString())
	assert.Len(t, attrs, 4)
}

func TestStartSpan_DefaultsToInternal(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "event.dispatch")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, trace.SpanKindInternal, sr.Ended()[0].SpanKind())
}

func TestRecordError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantCode   string
		wantEvent  string
	}{
		{
			name:       "transport failure fails the span",
			err:        errors.New("connection refused"),
			wantStatus: codes.Error,
			wantEvent:  "exception",
		},
		{
			name:       "transient domain error fails the span",
			err:        shared.NewDomainError(shared.CodeTransient, "Backend unavailable for ventas, please retry"),
			wantStatus: codes.Error,
			wantCode:   shared.CodeTransient,
			wantEvent:  "exception",
		},
		{
			name:       "conflict is an expected answer",
			err:        fmt.Errorf("void venta 101: %w", shared.NewDomainError(shared.CodeConflict, "already voided")),
			wantStatus: codes.Unset,
			wantCode:   shared.CodeConflict,
			wantEvent:  "rejected",
		},
		{
			name:       "insufficient stock is an expected answer",
			err:        shared.ErrInsufficientStock,
			wantStatus: codes.Unset,
			wantCode:   shared.CodeInsufficientStock,
			wantEvent:  "rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			_, span := telemetry.StartSpan(context.Background(), "backend POST /ventas")
			telemetry.RecordError(span, tt.err)
			telemetry.RecordError(span, nil)
			span.End()

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)
			require.Len(t, spans[0].Events(), 1)
			assert.Equal(t, tt.wantEvent, spans[0].Events()[0].Name)

			v, ok := attrValue(spans[0].Attributes(), telemetry.SpanAttrErrorCode)
			if tt.wantCode == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, v.AsString())
		})
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}
