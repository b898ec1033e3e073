package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests no route matched, keeping raw paths out of labels
const unmatchedRoute = "unmatched"

// HTTPMetricsConfig selects the meter the request instruments are created on
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	ServiceName   string
	Enabled       bool
}

type requestInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newRequestInstruments(meter metric.Meter) (*requestInstruments, error) {
	requests, err := telemetry.NewCounter(meter,
		"storefront_http_requests_total",
		"Requests served, by route, status and API error code",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}
	latency, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "storefront_http_request_duration_seconds",
		Description: "Time to answer a request, backend round trips included",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter("storefront_http_requests_in_flight",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}
	return &requestInstruments{requests: requests, latency: latency, inFlight: inFlight}, nil
}

func noopMiddleware(c *gin.Context) {
	c.Next()
}

// HTTPMetrics counts and times requests on the provider's meter. It is a
// pass-through when metrics are off.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return noopMiddleware
	}
	name := cfg.ServiceName
	if name == "" {
		name = "storefront"
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter(name + "/http"))
}

// HTTPMetricsWithMeter records on meter directly.
// Failed responses carry the error.code set through SetErrorCode.
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	inst, err := newRequestInstruments(meter)
	if err != nil {
		return noopMiddleware
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		started := time.Now()
		inst.inFlight.Add(ctx, 1)
		defer inst.inFlight.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		common := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		inst.latency.RecordDuration(ctx, time.Since(started), common...)

		counted := append(common, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))
		if code := ErrorCode(c); code != "" {
			counted = append(counted, telemetry.AttrErrorCode.String(code))
		}
		inst.requests.Inc(ctx, counted...)
	}
}
