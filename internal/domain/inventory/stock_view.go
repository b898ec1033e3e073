package inventory

import (
	"sync"
	"time"

	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StockEntry is one cached availability figure
type StockEntry struct {
	Available int
	FetchedAt time.Time
}

// StockView is the untrusted, per-session cache of available units per product.
// It is advisory only: the backend re-checks stock on commit. After any commit or
// void the touched products are invalidated, never decremented locally.
type StockView struct {
	mu      sync.RWMutex
	entries map[int64]StockEntry
	now     func() time.Time
}

// NewStockView creates an empty stock view
func NewStockView() *StockView {
	return &StockView{
		entries: make(map[int64]StockEntry),
		now:     time.Now,
	}
}

// Set records the last-known availability of a product
func (v *StockView) Set(productID int64, available int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[productID] = StockEntry{Available: available, FetchedAt: v.now()}
}

// Replace drops every entry and loads a fresh snapshot
func (v *StockView) Replace(snapshot map[int64]int) {
	now := v.now()
	entries := make(map[int64]StockEntry, len(snapshot))
	for id, available := range snapshot {
		entries[id] = StockEntry{Available: available, FetchedAt: now}
	}
	v.mu.Lock()
	v.entries = entries
	v.mu.Unlock()
}

// Get returns the cached entry for a product
func (v *StockView) Get(productID int64) (StockEntry, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entries[productID]
	return e, ok
}

// Invalidate forgets the cached figures of the given products
func (v *StockView) Invalidate(productIDs ...int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range productIDs {
		delete(v.entries, id)
	}
}

// Len returns the number of cached products
func (v *StockView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// InsufficientStockError reports a requested quantity above the cached availability
type InsufficientStockError struct {
	ProductID int64
	Requested decimal.Decimal
	Available int
}

var messagePrinter = message.NewPrinter(language.MustParse("es-CO"))

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	requested, _ := e.Requested.Float64()
	return messagePrinter.Sprintf("Insufficient stock for product %d: requested %v, available %d",
		e.ProductID, requested, e.Available)
}

// Unwrap lets errors.Is match shared.ErrInsufficientStock
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// ValidateAvailability checks a requested quantity against the cached view without
// mutating it. Products missing from the view pass; the server is authoritative.
func ValidateAvailability(productID int64, requested decimal.Decimal, view *StockView) error {
	if !requested.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, messagePrinter.Sprintf("Quantity of product %d must be positive", productID))
	}
	if view == nil {
		return nil
	}
	entry, ok := view.Get(productID)
	if !ok {
		return nil
	}
	if requested.GreaterThan(decimal.NewFromInt(int64(entry.Available))) {
		return &InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: entry.Available,
		}
	}
	return nil
}
