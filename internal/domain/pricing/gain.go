package pricing

import (
	"math"

	"github.com/petsupply/storefront/internal/domain/catalog"
)

// MaxGainPercent caps the displayed margin
const MaxGainPercent = 100.0

// GainCache is the local fallback for products whose catalog entry carries no margin
type GainCache interface {
	CachedGain(productID int64) (float64, bool)
}

// GainOverrides is a snapshot of cached gain percents by product id
type GainOverrides map[int64]float64

// CachedGain implements GainCache
func (g GainOverrides) CachedGain(productID int64) (float64, bool) {
	if g == nil {
		return 0, false
	}
	v, ok := g[productID]
	return v, ok
}

// ResolveGainPercent returns the display-only margin for a product, in [0, 100].
// The catalog's own value wins when finite and >= 0; the cache is consulted otherwise.
// Absence of both yields 0.
func ResolveGainPercent(product *catalog.Product, cache GainCache) float64 {
	if product != nil && product.HasFiniteGain() {
		return clampGain(*product.GainPercent)
	}
	if product != nil && cache != nil {
		if v, ok := cache.CachedGain(product.ID); ok && UsableGain(v) {
			return clampGain(v)
		}
	}
	return 0
}

// UsableGain reports whether a cached gain percent may be displayed: finite and >= 0
func UsableGain(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func clampGain(v float64) float64 {
	if v > MaxGainPercent {
		return MaxGainPercent
	}
	return v
}
