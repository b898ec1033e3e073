package pricing

import (
	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// PriceSource tells where a resolved price came from
type PriceSource string

const (
	SourceBase      PriceSource = "base"
	SourceSurcharge PriceSource = "surcharge"
	SourceOverride  PriceSource = "override"
)

// PriceResolution is the effective unit price of a line item
type PriceResolution struct {
	Price            decimal.Decimal
	BaseReference    decimal.Decimal
	IncrementPercent decimal.Decimal
	Source           PriceSource
}

// OverrideLookup finds a stored full-replacement price for (product, size)
type OverrideLookup interface {
	Lookup(productID int64, size string) (decimal.Decimal, bool)
}

var hundred = decimal.NewFromInt(100)

// VariantPriceResolver resolves effective unit prices from base price, size and overrides.
// It holds no mutable state; callers pass a snapshot of the surcharge table.
type VariantPriceResolver struct {
	surcharges SurchargeTable
}

// NewVariantPriceResolver creates a resolver over the given surcharge table
func NewVariantPriceResolver(surcharges SurchargeTable) *VariantPriceResolver {
	return &VariantPriceResolver{surcharges: surcharges}
}

// Surcharges returns the table the resolver was built with
func (r *VariantPriceResolver) Surcharges() SurchargeTable {
	return r.surcharges
}

// Resolve returns the effective unit price of product in the given size.
// An empty size yields the base price. A stored override replaces the price verbatim.
// Otherwise the size's surcharge percent is applied; unknown sizes resolve to 0%.
// product.BasePrice > 0 is a precondition.
func (r *VariantPriceResolver) Resolve(product *catalog.Product, size string, overrides OverrideLookup) PriceResolution {
	base := product.BasePrice
	size = catalog.NormalizeSize(size)
	if size == "" {
		return PriceResolution{
			Price:            base,
			BaseReference:    base,
			IncrementPercent: decimal.Zero,
			Source:           SourceBase,
		}
	}

	if overrides != nil {
		if price, ok := overrides.Lookup(product.ID, size); ok {
			return PriceResolution{
				Price:            price,
				BaseReference:    base,
				IncrementPercent: decimal.Zero,
				Source:           SourceOverride,
			}
		}
	}

	pct := r.surcharges.IncrementFor(size)
	source := SourceSurcharge
	if pct.IsZero() {
		source = SourceBase
	}
	return PriceResolution{
		Price:            ApplyIncrement(base, pct),
		BaseReference:    base,
		IncrementPercent: pct,
		Source:           source,
	}
}

// ApplyIncrement returns base * (1 + pct/100)
func ApplyIncrement(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(1).Add(pct.Div(hundred)))
}
