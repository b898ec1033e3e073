package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// TradeMetrics tracks stock-mutating activity of the storefront.
type TradeMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	commitTotal         *Counter
	commitAmountTotal   *Counter
	voidTotal           *Counter
	reactivationTotal   *Counter
	stockRejectionTotal *Counter

	stockViewEntries *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// StockViewSizer reports how many products currently have a cached stock figure
type StockViewSizer interface {
	Len() int
}

// TradeMetricsConfig holds configuration for trade metrics.
type TradeMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// VoidOutcome labels the result of a void call
type VoidOutcome string

const (
	VoidOutcomeVoided        VoidOutcome = "voided"
	VoidOutcomeAlreadyVoided VoidOutcome = "already_voided"
	VoidOutcomeFailed        VoidOutcome = "failed"
)

// NewTradeMetrics creates a new TradeMetrics instance.
func NewTradeMetrics(cfg TradeMetricsConfig) (*TradeMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tm := &TradeMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error
	if tm.commitTotal, err = NewCounter(cfg.Meter,
		"storefront_order_commit_total",
		"Records committed to the backend",
		"{records}",
	); err != nil {
		return nil, err
	}
	if tm.commitAmountTotal, err = NewCounter(cfg.Meter,
		"storefront_order_amount_total",
		"Committed record totals in whole pesos",
		"{COP}",
	); err != nil {
		return nil, err
	}
	if tm.voidTotal, err = NewCounter(cfg.Meter,
		"storefront_order_void_total",
		"Void calls by outcome",
		"{calls}",
	); err != nil {
		return nil, err
	}
	if tm.reactivationTotal, err = NewCounter(cfg.Meter,
		"storefront_sale_reactivation_total",
		"Voided sales set back to completed",
		"{records}",
	); err != nil {
		return nil, err
	}
	if tm.stockRejectionTotal, err = NewCounter(cfg.Meter,
		"storefront_stock_rejection_total",
		"Lines rejected by the advisory stock check",
		"{lines}",
	); err != nil {
		return nil, err
	}
	if tm.stockViewEntries, err = NewGauge(cfg.Meter,
		"storefront_stock_view_entries",
		"Products with a cached stock figure",
		"{products}",
	); err != nil {
		return nil, err
	}

	return tm, nil
}

// RecordCommit records a committed record and its total.
// The Record methods are no-ops on a nil receiver.
func (tm *TradeMetrics) RecordCommit(ctx context.Context, kind string, total decimal.Decimal) {
	if tm == nil {
		return
	}
	tm.commitTotal.Inc(ctx, AttrOrderKind.String(kind))
	tm.commitAmountTotal.Add(ctx, total.Round(0).IntPart(), AttrOrderKind.String(kind))
}

// RecordVoid records the outcome of a void call
func (tm *TradeMetrics) RecordVoid(ctx context.Context, kind string, outcome VoidOutcome) {
	if tm == nil {
		return
	}
	tm.voidTotal.Inc(ctx,
		AttrOrderKind.String(kind),
		AttrVoidOutcome.String(string(outcome)),
	)
}

// RecordReactivation records an administrative reactivation
func (tm *TradeMetrics) RecordReactivation(ctx context.Context) {
	if tm == nil {
		return
	}
	tm.reactivationTotal.Inc(ctx)
}

// RecordStockRejection records a line blocked by the advisory stock check
func (tm *TradeMetrics) RecordStockRejection(ctx context.Context, productID int64) {
	if tm == nil {
		return
	}
	tm.stockRejectionTotal.Inc(ctx, AttrProductID.Int64(productID))
}

// RecordStockViewSize records the number of cached stock entries
func (tm *TradeMetrics) RecordStockViewSize(ctx context.Context, n int) {
	tm.stockViewEntries.Record(ctx, int64(n))
}

// StartPeriodicCollection samples the stock view size every interval until Stop.
func (tm *TradeMetrics) StartPeriodicCollection(ctx context.Context, view StockViewSizer, interval time.Duration) {
	tm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go tm.runPeriodicCollection(ctx, view, interval)
	})
}

func (tm *TradeMetrics) runPeriodicCollection(ctx context.Context, view StockViewSizer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tm.RecordStockViewSize(ctx, view.Len())

	for {
		select {
		case <-tm.stopChan:
			tm.logger.Info("Stopping periodic trade metrics collection")
			return
		case <-ctx.Done():
			tm.logger.Info("Context cancelled, stopping periodic trade metrics collection")
			return
		case <-ticker.C:
			tm.RecordStockViewSize(ctx, view.Len())
		}
	}
}

// Stop stops the periodic collection.
func (tm *TradeMetrics) Stop() {
	tm.stopOnce.Do(func() {
		close(tm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewTradeMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
