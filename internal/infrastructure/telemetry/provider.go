// Package telemetry wires OpenTelemetry tracing and metrics for the storefront.
//
// Both providers export over OTLP/gRPC to the same collector and describe the
// process with the same resource. A disabled provider keeps the global no-op
// implementation, so instruments and spans created against it cost nothing.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// providerShutdownTimeout caps a flush on shutdown regardless of the caller's deadline
const providerShutdownTimeout = 10 * time.Second

// processResource describes this process to the collector
func processResource(service, version, environment string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	attrs := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(service),
			semconv.ServiceVersion(version),
		),
		resource.WithSchemaURL(semconv.SchemaURL),
	}
	if environment != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.DeploymentEnvironmentName(environment)))
	}
	custom, err := resource.New(context.Background(), attrs...)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	res, err := resource.Merge(resource.Default(), custom)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

// shutdownProvider flushes and stops one SDK provider
func shutdownProvider(ctx context.Context, logger *zap.Logger, what string, stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()

	if err := stop(ctx); err != nil {
		logger.Error("Telemetry provider shutdown failed", zap.String("provider", what), zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", what, err)
	}
	logger.Info("Telemetry provider stopped", zap.String("provider", what))
	return nil
}
