package trade

import (
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated     = "OrderCreated"
	EventTypeOrderConfirmed   = "OrderConfirmed"
	EventTypeOrderVoided      = "OrderVoided"
	EventTypeOrderReactivated = "OrderReactivated"
)

// OrderCreatedEvent is raised once the backend accepted a new record
type OrderCreatedEvent struct {
	shared.EventHeader
	Kind       OrderKind       `json:"kind"`
	ProductIDs []int64         `json:"product_ids"`
	Total      decimal.Decimal `json:"total"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		Kind:            order.Kind,
		ProductIDs:      order.ProductIDs(),
		Total:           order.Totals().Total,
	}
}

// OrderConfirmedEvent is raised when a pedido becomes a venta
type OrderConfirmedEvent struct {
	shared.EventHeader
	SaleID     int64   `json:"sale_id"`
	ProductIDs []int64 `json:"product_ids"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(order *Order, saleID int64) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderConfirmed, AggregateTypeOrder, order.ID),
		SaleID:          saleID,
		ProductIDs:      order.ProductIDs(),
	}
}

// OrderVoidedEvent is raised when a venta or compra becomes Anulada
type OrderVoidedEvent struct {
	shared.EventHeader
	Kind       OrderKind `json:"kind"`
	ProductIDs []int64   `json:"product_ids"`
}

// NewOrderVoidedEvent creates a new OrderVoidedEvent
func NewOrderVoidedEvent(order *Order) *OrderVoidedEvent {
	return &OrderVoidedEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderVoided, AggregateTypeOrder, order.ID),
		Kind:            order.Kind,
		ProductIDs:      order.ProductIDs(),
	}
}

// OrderReactivatedEvent is raised when an Anulada venta is set back to Completada.
// No stock was mutated.
type OrderReactivatedEvent struct {
	shared.EventHeader
	ProductIDs []int64 `json:"product_ids"`
}

// NewOrderReactivatedEvent creates a new OrderReactivatedEvent
func NewOrderReactivatedEvent(order *Order) *OrderReactivatedEvent {
	return &OrderReactivatedEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderReactivated, AggregateTypeOrder, order.ID),
		ProductIDs:      order.ProductIDs(),
	}
}
