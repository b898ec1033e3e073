// Package event delivers domain events inside the process.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish between Stop and the next Start
var ErrBusStopped = errors.New("event bus is stopped")

// InMemoryEventBus runs handlers synchronously on the publishing goroutine, in
// subscription order. Handler failures are counted and logged; they never reach
// the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	log      *zap.Logger

	stopped   atomic.Bool
	published atomic.Int64
	failed    atomic.Int64
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{registry: NewHandlerRegistry(), log: log.Named("events")}
}

// Subscribe registers handler for eventTypes, defaulting to handler.EventTypes()
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.log.Debug("subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	for _, ev := range events {
		b.published.Add(1)
		for _, h := range b.registry.HandlersFor(ev.EventType()) {
			if err := b.deliver(ctx, h, ev); err != nil {
				b.failed.Add(1)
				b.log.Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.Stringer("event_id", ev.EventID()),
					zap.Int64("record_id", ev.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// deliver runs one handler under a consumer span, turning a panic into an error
func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "event.deliver "+ev.EventType(),
		telemetry.WithSpanKind(trace.SpanKindConsumer),
		telemetry.WithAttribute("event.type", ev.EventType()),
		telemetry.WithAttribute("event.record_id", ev.AggregateID()),
	)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		telemetry.RecordError(span, err)
	}()
	return h.Handle(ctx, ev)
}

// Start opens the bus for publishing; a stopped bus can be started again
func (b *InMemoryEventBus) Start(context.Context) error {
	b.stopped.Store(false)
	b.log.Info("event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop refuses further publishing. Delivery is synchronous, so nothing is
// pending once Stop returns.
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.stopped.Store(true)
	published, failed := b.Stats()
	b.log.Info("event bus stopped", zap.Int64("published", published), zap.Int64("handler_failures", failed))
	return nil
}

// Stats returns events published and handler invocations that failed
func (b *InMemoryEventBus) Stats() (published, failed int64) {
	return b.published.Load(), b.failed.Load()
}
