package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for settings database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // keep query variables in span statements
	SlowQueryThresh time.Duration // spans slower than this get db.slow_query
	DBSystem        string        // "sqlite" or "postgresql"

	// TracerProvider overrides the global provider when set.
	TracerProvider trace.TracerProvider
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db plus a callback that
// marks slow queries and errors on the active span. It is a no-op when
// tracing is disabled.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Enabled {
		log.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	// timing callbacks go in first so they run ahead of otelgorm's span end
	if err := registerTimingCallbacks(db, cfg.SlowQueryThresh); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	log.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

type gormRegister func(name string, fn func(*gorm.DB)) error

func registerTimingCallbacks(db *gorm.DB, thresh time.Duration) error {
	cb := db.Callback()
	before := map[string]gormRegister{
		"create": cb.Create().Before("gorm:create").Register,
		"query":  cb.Query().Before("gorm:query").Register,
		"update": cb.Update().Before("gorm:update").Register,
		"delete": cb.Delete().Before("gorm:delete").Register,
		"row":    cb.Row().Before("gorm:row").Register,
		"raw":    cb.Raw().Before("gorm:raw").Register,
	}
	after := map[string]gormRegister{
		"create": cb.Create().After("gorm:create").Register,
		"query":  cb.Query().After("gorm:query").Register,
		"update": cb.Update().After("gorm:update").Register,
		"delete": cb.Delete().After("gorm:delete").Register,
		"row":    cb.Row().After("gorm:row").Register,
		"raw":    cb.Raw().After("gorm:raw").Register,
	}

	for op, register := range before {
		if err := register("otel_timing:before_"+op, markQueryStart); err != nil {
			return err
		}
	}
	for op, register := range after {
		if err := register("otel_timing:after_"+op, slowQueryCallback(thresh)); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func slowQueryCallback(thresh time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", thresh.Milliseconds()),
			))
		}
	}
}
