package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// BackendMetrics records latency and failures of calls to the authoritative backend
type BackendMetrics struct {
	duration *Histogram
	failures *Counter
}

// NewBackendMetrics creates the backend call instruments
func NewBackendMetrics(meter metric.Meter) (*BackendMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "NewBackendMetrics", Err: "meter cannot be nil"}
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "storefront_backend_request_duration_seconds",
		Description: "Duration of backend REST calls",
		Unit:        "s",
		Boundaries:  BackendDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	failures, err := NewCounter(meter,
		"storefront_backend_request_failures_total",
		"Backend REST calls that failed or returned an error status",
		"{calls}",
	)
	if err != nil {
		return nil, err
	}
	return &BackendMetrics{duration: duration, failures: failures}, nil
}

// Observe records one call. status is 0 when no response was received.
func (m *BackendMetrics) Observe(ctx context.Context, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	class := statusClass(status)
	m.duration.RecordDuration(ctx, d,
		AttrEndpoint.String(endpoint),
		AttrStatusClass.String(class),
	)
	if status == 0 || status >= 400 {
		m.failures.Inc(ctx,
			AttrEndpoint.String(endpoint),
			AttrStatusClass.String(class),
		)
	}
}

func statusClass(status int) string {
	if status <= 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}
