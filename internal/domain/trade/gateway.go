package trade

import "context"

// OrderGateway is the authoritative backend for the order family.
// Every call is a single request; stock is mutated server-side atomically per record.
type OrderGateway interface {
	// Create submits a new record; the backend validates totals and applies stock
	Create(ctx context.Context, order *Order) (*Order, error)
	// Get reads a record; NOT_FOUND when it vanished
	Get(ctx context.Context, kind OrderKind, id int64) (*Order, error)
	// Confirm turns a pending pedido into a venta and returns the venta
	Confirm(ctx context.Context, pedidoID int64) (*Order, error)
	// Void voids a venta or compra and restores stock; CONFLICT when already voided
	Void(ctx context.Context, kind OrderKind, id int64) (*Order, error)
	// SetStatus changes the status only, with no stock mutation
	SetStatus(ctx context.Context, kind OrderKind, id int64, status OrderStatus) (*Order, error)
}
