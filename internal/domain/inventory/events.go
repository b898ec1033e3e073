package inventory

import "github.com/petsupply/storefront/internal/domain/shared"

// Aggregate type constant
const AggregateTypeStockView = "StockView"

// EventTypeStockInvalidated is raised after a stock-mutating call succeeded
const EventTypeStockInvalidated = "StockInvalidated"

// StockInvalidatedEvent tells listeners that cached availability of the products is stale
type StockInvalidatedEvent struct {
	shared.EventHeader
	ProductIDs []int64 `json:"product_ids"`
	Reason     string  `json:"reason"`
}

// NewStockInvalidatedEvent creates a new StockInvalidatedEvent. orderID is the record
// whose commit or void caused the invalidation.
func NewStockInvalidatedEvent(orderID int64, productIDs []int64, reason string) *StockInvalidatedEvent {
	return &StockInvalidatedEvent{
		EventHeader: shared.NewEventHeader(EventTypeStockInvalidated, AggregateTypeStockView, orderID),
		ProductIDs:      productIDs,
		Reason:          reason,
	}
}
