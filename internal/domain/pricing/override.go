package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SizePriceOverride is a stored full-replacement price for one (product, size)
type SizePriceOverride struct {
	ProductID int64
	Size      string
	Price     decimal.Decimal
	UpdatedAt time.Time
}

// NewSizePriceOverride validates and normalises an override
func NewSizePriceOverride(productID int64, size string, price decimal.Decimal) (*SizePriceOverride, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID must be positive")
	}
	size = catalog.NormalizeSize(size)
	if size == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Size label cannot be empty")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Override price must be positive")
	}
	return &SizePriceOverride{
		ProductID: productID,
		Size:      size,
		Price:     price,
		UpdatedAt: time.Now(),
	}, nil
}

// Key returns the cache key "<productId>:<SIZE>"
func (o SizePriceOverride) Key() string {
	return OverrideKey(o.ProductID, o.Size)
}

// OverrideKey builds the "<productId>:<SIZE>" key used by the local override cache
func OverrideKey(productID int64, size string) string {
	return fmt.Sprintf("%d:%s", productID, catalog.NormalizeSize(size))
}

// ParseOverrideKey splits a "<productId>:<SIZE>" key
func ParseOverrideKey(key string) (int64, string, error) {
	idPart, size, ok := strings.Cut(key, ":")
	if !ok || size == "" {
		return 0, "", fmt.Errorf("invalid override key %q", key)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid override key %q: %w", key, err)
	}
	return id, catalog.NormalizeSize(size), nil
}

// OverrideSet is an immutable snapshot of known overrides, keyed by OverrideKey
type OverrideSet map[string]decimal.Decimal

// Lookup returns the override price for (productID, size) when one exists
func (s OverrideSet) Lookup(productID int64, size string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	price, ok := s[OverrideKey(productID, size)]
	return price, ok
}

// With returns a copy of the set including o
func (s OverrideSet) With(o SizePriceOverride) OverrideSet {
	out := make(OverrideSet, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[o.Key()] = o.Price
	return out
}

// OverrideSource reads and writes stored overrides on the authoritative backend
type OverrideSource interface {
	// GetSizeOverride returns the stored override, or a NOT_FOUND domain error when none exists
	GetSizeOverride(ctx context.Context, productID int64, size string) (*SizePriceOverride, error)
	// SaveSizeOverride creates or overwrites the stored override
	SaveSizeOverride(ctx context.Context, override SizePriceOverride) error
}
