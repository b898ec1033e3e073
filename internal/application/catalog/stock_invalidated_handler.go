package catalog

import (
	"context"
	"fmt"

	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// StockInvalidatedHandler drops cached products after a commit or void so their
// stock and price are refetched on the next read
type StockInvalidatedHandler struct {
	catalog *CatalogService
	logger  *zap.Logger
}

// NewStockInvalidatedHandler creates a new handler for stock invalidated events
func NewStockInvalidatedHandler(catalog *CatalogService, logger *zap.Logger) *StockInvalidatedHandler {
	return &StockInvalidatedHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockInvalidatedHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockInvalidated}
}

// Handle processes a StockInvalidatedEvent
func (h *StockInvalidatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	invalidated, ok := event.(*inventory.StockInvalidatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockInvalidated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockInvalidated, event.EventType())
	}

	h.catalog.Forget(invalidated.ProductIDs...)
	h.logger.Debug("cached products invalidated",
		zap.Int64("order_id", invalidated.AggregateID()),
		zap.Int64s("product_ids", invalidated.ProductIDs),
		zap.String("reason", invalidated.Reason),
	)
	return nil
}
