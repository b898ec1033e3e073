package catalog

import (
	"math"

	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product is the read-only cached copy of a catalog entry owned by the backend
type Product struct {
	ID          int64
	Name        string
	BasePrice   decimal.Decimal
	Unit        valueobject.MeasurementUnit
	Category    string
	GainPercent *float64 // authoritative margin, nil when the backend has none
	Active      bool
	Stock       int
	Sizes       []string // size labels the product is offered in, empty when not variant-capable
	Colors      []string
}

// Validate checks the preconditions the pricing engine relies on
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product ID must be positive")
	}
	if p.Name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if !p.BasePrice.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product base price must be positive")
	}
	if !p.Unit.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product measurement unit is not supported")
	}
	return nil
}

// RequiresSize reports whether a line for this product must name a size
func (p *Product) RequiresSize() bool {
	return len(p.Sizes) > 0
}

// RequiresColor reports whether a line for this product must name a color
func (p *Product) RequiresColor() bool {
	return len(p.Colors) > 0
}

// HasFiniteGain reports whether the authoritative gain percent is usable
func (p *Product) HasFiniteGain() bool {
	if p.GainPercent == nil {
		return false
	}
	g := *p.GainPercent
	return !math.IsNaN(g) && !math.IsInf(g, 0) && g >= 0
}
