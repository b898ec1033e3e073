package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Invalidation reasons carried by StockInvalidatedEvent
const (
	ReasonCommit       = "commit"
	ReasonConfirm      = "confirm"
	ReasonVoid         = "void"
	ReasonReactivation = "reactivation"
)

// VoidResult is the outcome of a void call
type VoidResult struct {
	Order         *trade.Order
	AlreadyVoided bool
}

// StockReconciler validates quantities against the cached StockView and drives the
// stock-mutating backend calls. It never decrements the view locally: after every
// successful commit or void the touched products are invalidated and refetched.
// Nothing here retries; a failed call must be re-triggered by the user.
type StockReconciler struct {
	gateway        trade.OrderGateway
	view           *inventory.StockView
	eventPublisher shared.EventPublisher
	metrics        *telemetry.TradeMetrics
}

// NewStockReconciler creates a new StockReconciler
func NewStockReconciler(gateway trade.OrderGateway, view *inventory.StockView) *StockReconciler {
	return &StockReconciler{
		gateway: gateway,
		view:    view,
	}
}

// SetEventPublisher sets the event publisher for cache invalidation listeners
func (r *StockReconciler) SetEventPublisher(publisher shared.EventPublisher) {
	r.eventPublisher = publisher
}

// SetMetrics sets the trade counters
func (r *StockReconciler) SetMetrics(metrics *telemetry.TradeMetrics) {
	r.metrics = metrics
}

// ValidateAvailability is the advisory pre-submission check of one product
func (r *StockReconciler) ValidateAvailability(ctx context.Context, productID int64, requested decimal.Decimal) error {
	err := inventory.ValidateAvailability(productID, requested, r.view)
	var insufficient *inventory.InsufficientStockError
	if errors.As(err, &insufficient) {
		r.metrics.RecordStockRejection(ctx, productID)
		logger.L(ctx).Info("line blocked by cached stock",
			zap.Int64("product_id", productID),
			zap.String("requested", requested.String()),
			zap.Int("available", insufficient.Available),
		)
	}
	return err
}

// ValidateOrder checks the summed quantity per product of a record that takes stock
// out. Purchases are not checked.
func (r *StockReconciler) ValidateOrder(ctx context.Context, order *trade.Order) error {
	if order.Kind == trade.KindCompra {
		return nil
	}
	requested := make(map[int64]decimal.Decimal, len(order.Lines))
	for _, l := range order.Lines {
		requested[l.ProductID] = requested[l.ProductID].Add(l.EffectiveQuantity())
	}
	for _, id := range order.ProductIDs() {
		if err := r.ValidateAvailability(ctx, id, requested[id]); err != nil {
			return err
		}
	}
	return nil
}

// Commit submits a new record in one request. The backend validates totals and
// applies every line's stock change atomically.
func (r *StockReconciler) Commit(ctx context.Context, order *trade.Order) (*trade.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "reconciler.commit",
		telemetry.WithSpanKind(trace.SpanKindInternal),
		telemetry.WithAttribute(telemetry.SpanAttrOrderKind, order.Kind.String()),
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(order.Lines)),
	)
	defer span.End()

	if err := order.ValidateForSubmission(); err != nil {
		return nil, err
	}

	created, err := r.gateway.Create(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		r.logFailure(ctx, "commit failed", order.Kind, 0, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, created.ID)

	productIDs := order.ProductIDs()
	r.view.Invalidate(productIDs...)
	created.AddDomainEvent(trade.NewOrderCreatedEvent(created))
	created.AddDomainEvent(inventory.NewStockInvalidatedEvent(created.ID, productIDs, ReasonCommit))
	r.publish(ctx, created)

	total := created.Totals().Total
	r.metrics.RecordCommit(ctx, created.Kind.String(), total)
	logger.L(ctx).Info("record committed",
		zap.String("kind", created.Kind.String()),
		zap.Int64("order_id", created.ID),
		zap.Int("lines", len(created.Lines)),
		zap.String("total", total.String()),
	)
	telemetry.SetOK(span)
	return created, nil
}

// Confirm turns a pending pedido into a venta. The backend decrements the stock of
// the pedido's lines; the pedido itself is superseded by the returned venta.
func (r *StockReconciler) Confirm(ctx context.Context, pedido *trade.Order) (*trade.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "reconciler.confirm",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, pedido.ID),
	)
	defer span.End()

	if pedido.Kind != trade.KindPedido || !trade.CanTransition(pedido.Kind, pedido.Status, trade.StatusCompletada) {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot confirm %s %d in %s status", pedido.Kind, pedido.ID, pedido.Status))
	}

	sale, err := r.gateway.Confirm(ctx, pedido.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		r.logFailure(ctx, "confirm failed", pedido.Kind, pedido.ID, err)
		return nil, err
	}
	if err := pedido.Confirm(sale.ID); err != nil {
		return nil, err
	}
	if len(sale.Lines) == 0 {
		sale.Lines = pedido.Lines
	}

	productIDs := pedido.ProductIDs()
	r.view.Invalidate(productIDs...)
	pedido.AddDomainEvent(inventory.NewStockInvalidatedEvent(pedido.ID, productIDs, ReasonConfirm))
	r.publish(ctx, pedido)

	r.metrics.RecordCommit(ctx, trade.KindVenta.String(), sale.Totals().Total)
	logger.L(ctx).Info("order confirmed",
		zap.Int64("order_id", pedido.ID),
		zap.Int64("sale_id", sale.ID),
	)
	telemetry.SetOK(span)
	return sale, nil
}

// Void voids a venta or compra and lets the backend restore its stock.
// Voiding a record that is already Anulada, locally known or reported by the backend
// as a conflict, returns AlreadyVoided and never triggers a second restoration.
func (r *StockReconciler) Void(ctx context.Context, order *trade.Order) (*VoidResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "reconciler.void",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, order.ID),
		telemetry.WithAttribute(telemetry.SpanAttrOrderKind, order.Kind.String()),
	)
	defer span.End()

	if order.IsVoided() {
		return r.alreadyVoided(ctx, span, order), nil
	}
	if !trade.CanTransition(order.Kind, order.Status, trade.StatusAnulada) {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot void %s %d in %s status", order.Kind, order.ID, order.Status))
	}

	voided, err := r.gateway.Void(ctx, order.Kind, order.ID)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeConflict {
			return r.alreadyVoided(ctx, span, order), nil
		}
		telemetry.RecordError(span, err)
		r.metrics.RecordVoid(ctx, order.Kind.String(), telemetry.VoidOutcomeFailed)
		r.logFailure(ctx, "void failed", order.Kind, order.ID, err)
		return nil, err
	}
	if err := order.Void(); err != nil {
		return nil, err
	}
	if len(voided.Lines) == 0 {
		voided.Lines = order.Lines
	}
	voided.Status = trade.StatusAnulada

	productIDs := order.ProductIDs()
	r.view.Invalidate(productIDs...)
	order.AddDomainEvent(inventory.NewStockInvalidatedEvent(order.ID, productIDs, ReasonVoid))
	r.publish(ctx, order)

	r.metrics.RecordVoid(ctx, order.Kind.String(), telemetry.VoidOutcomeVoided)
	logger.L(ctx).Info("record voided",
		zap.String("kind", order.Kind.String()),
		zap.Int64("order_id", order.ID),
		zap.String("outcome", OutcomeVoided),
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, OutcomeVoided)
	telemetry.SetOK(span)
	return &VoidResult{Order: voided}, nil
}

func (r *StockReconciler) alreadyVoided(ctx context.Context, span trace.Span, order *trade.Order) *VoidResult {
	order.Status = trade.StatusAnulada
	order.ClearDomainEvents()
	r.metrics.RecordVoid(ctx, order.Kind.String(), telemetry.VoidOutcomeAlreadyVoided)
	logger.L(ctx).Info("record already voided",
		zap.String("kind", order.Kind.String()),
		zap.Int64("order_id", order.ID),
		zap.String("outcome", OutcomeAlreadyVoided),
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, OutcomeAlreadyVoided)
	telemetry.SetOK(span)
	return &VoidResult{Order: order, AlreadyVoided: true}
}

// InvalidateAfterStatusChange forgets the cached stock of a record whose status
// changed without a stock-mutating call
func (r *StockReconciler) InvalidateAfterStatusChange(ctx context.Context, order *trade.Order) {
	productIDs := order.ProductIDs()
	r.view.Invalidate(productIDs...)
	order.AddDomainEvent(inventory.NewStockInvalidatedEvent(order.ID, productIDs, ReasonReactivation))
	r.publish(ctx, order)
}

func (r *StockReconciler) publish(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	aggregate.ClearDomainEvents()
	if r.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := r.eventPublisher.Publish(ctx, events...); err != nil {
		// the backend call already succeeded; listeners only refresh caches
		logger.L(ctx).Warn("failed to publish domain events", zap.Error(err))
	}
}

func (r *StockReconciler) logFailure(ctx context.Context, msg string, kind trade.OrderKind, id int64, err error) {
	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.Int64("order_id", id),
		zap.String("code", shared.CodeOf(err)),
		zap.Error(err),
	}
	if shared.CodeOf(err) == shared.CodeTransient {
		logger.L(ctx).Warn(msg, fields...)
		return
	}
	logger.L(ctx).Info(msg, fields...)
}
