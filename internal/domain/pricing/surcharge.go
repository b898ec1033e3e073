package pricing

import (
	"sort"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SurchargeTable maps a size label to its percentage increment over base price.
// Keys are stored normalised; lookups are case-insensitive.
type SurchargeTable struct {
	increments map[string]decimal.Decimal
}

// DefaultSurcharges are the increments applied when nothing was saved yet
func DefaultSurcharges() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"S":  decimal.Zero,
		"M":  decimal.NewFromInt(10),
		"L":  decimal.NewFromInt(20),
		"XL": decimal.NewFromInt(30),
	}
}

// DefaultSurchargeTable returns the {S:0, M:10, L:20, XL:30} table
func DefaultSurchargeTable() SurchargeTable {
	t, _ := NewSurchargeTable(DefaultSurcharges())
	return t
}

// NewSurchargeTable builds a table from label -> percent. Increments must be >= 0.
func NewSurchargeTable(increments map[string]decimal.Decimal) (SurchargeTable, error) {
	t := SurchargeTable{increments: make(map[string]decimal.Decimal, len(increments))}
	for label, pct := range increments {
		key := catalog.NormalizeSize(label)
		if key == "" {
			return SurchargeTable{}, shared.NewDomainError(shared.CodeInvalidInput, "Size label cannot be empty")
		}
		if pct.IsNegative() {
			return SurchargeTable{}, shared.NewDomainError(shared.CodeInvalidInput, "Size surcharge for "+key+" cannot be negative")
		}
		t.increments[key] = pct
	}
	return t, nil
}

// IncrementFor returns the percent for a size; unknown labels resolve to 0
func (t SurchargeTable) IncrementFor(size string) decimal.Decimal {
	if pct, ok := t.increments[catalog.NormalizeSize(size)]; ok {
		return pct
	}
	return decimal.Zero
}

// Has reports whether the size has an explicit entry
func (t SurchargeTable) Has(size string) bool {
	_, ok := t.increments[catalog.NormalizeSize(size)]
	return ok
}

// Entries returns a copy of the table
func (t SurchargeTable) Entries() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(t.increments))
	for k, v := range t.increments {
		out[k] = v
	}
	return out
}

// Labels returns the size labels sorted by increment, then label
func (t SurchargeTable) Labels() []string {
	labels := make([]string, 0, len(t.increments))
	for k := range t.increments {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := t.increments[labels[i]], t.increments[labels[j]]
		if !a.Equal(b) {
			return a.LessThan(b)
		}
		return labels[i] < labels[j]
	})
	return labels
}
