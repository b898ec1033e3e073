package pricing

import (
	"sort"

	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// OverrideSource values of OverrideResult.Source
const (
	OverrideSourceBackend = "backend"
	OverrideSourceLocal   = "local"
)

// OverrideResult is a size override read or write outcome
type OverrideResult struct {
	ProductID int64           `json:"product_id"`
	Size      string          `json:"size"`
	Found     bool            `json:"found"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source,omitempty"`
	Degraded  bool            `json:"degraded"`
}

// SurchargeEntry is one row of the surcharge table
type SurchargeEntry struct {
	Size    string          `json:"size"`
	Percent decimal.Decimal `json:"percent"`
}

// SurchargeTableResponse lists the table ordered by increment
type SurchargeTableResponse struct {
	Entries []SurchargeEntry `json:"entries"`
}

// ToSurchargeTableResponse converts a table to its response form
func ToSurchargeTableResponse(t pricing.SurchargeTable) SurchargeTableResponse {
	entries := t.Entries()
	resp := SurchargeTableResponse{Entries: make([]SurchargeEntry, 0, len(entries))}
	for _, label := range t.Labels() {
		resp.Entries = append(resp.Entries, SurchargeEntry{Size: label, Percent: entries[label]})
	}
	return resp
}

// GainEntry is one cached gain percent
type GainEntry struct {
	ProductID int64   `json:"product_id"`
	Percent   float64 `json:"percent"`
}

// OverrideEntry is one locally cached size override
type OverrideEntry struct {
	ProductID int64           `json:"product_id"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
}

// SettingsResponse is the whole local pricing configuration
type SettingsResponse struct {
	Surcharges SurchargeTableResponse `json:"surcharges"`
	Gains      []GainEntry            `json:"gains"`
	Overrides  []OverrideEntry        `json:"overrides"`
}

// ToSettingsResponse converts a snapshot, gains and overrides ordered by product then size
func ToSettingsResponse(s pricing.Settings) SettingsResponse {
	resp := SettingsResponse{
		Surcharges: ToSurchargeTableResponse(s.Surcharges),
		Gains:      make([]GainEntry, 0, len(s.Gains)),
		Overrides:  make([]OverrideEntry, 0, len(s.Overrides)),
	}
	for id, pct := range s.Gains {
		if !pricing.UsableGain(pct) {
			continue
		}
		resp.Gains = append(resp.Gains, GainEntry{ProductID: id, Percent: pct})
	}
	sort.Slice(resp.Gains, func(i, j int) bool { return resp.Gains[i].ProductID < resp.Gains[j].ProductID })

	for key, price := range s.Overrides {
		id, size, err := pricing.ParseOverrideKey(key)
		if err != nil {
			continue
		}
		resp.Overrides = append(resp.Overrides, OverrideEntry{ProductID: id, Size: size, Price: price})
	}
	sort.Slice(resp.Overrides, func(i, j int) bool {
		a, b := resp.Overrides[i], resp.Overrides[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Size < b.Size
	})
	return resp
}

// QuoteRequest asks for the price of one prospective line
type QuoteRequest struct {
	ProductID int64
	Size      string
	Quantity  int
	Grams     decimal.Decimal
}

// QuoteResponse is the resolved price of a prospective line
type QuoteResponse struct {
	ProductID         int64           `json:"product_id"`
	Size              string          `json:"size,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	BaseReference     decimal.Decimal `json:"base_reference"`
	IncrementPercent  decimal.Decimal `json:"increment_percent"`
	PriceSource       string          `json:"price_source"`
	IsBulk            bool            `json:"is_bulk"`
	Grams             decimal.Decimal `json:"grams"`
	GramFactor        decimal.Decimal `json:"gram_factor"`
	Quantity          int             `json:"quantity"`
	EffectiveQuantity decimal.Decimal `json:"effective_quantity"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	OverrideDegraded  bool            `json:"override_degraded"`
}

// Gain sources
const (
	GainSourceCatalog = "catalog"
	GainSourceCache   = "cache"
	GainSourceNone    = "none"
)

// GainResponse is the display-only margin of a product
type GainResponse struct {
	ProductID int64   `json:"product_id"`
	Percent   float64 `json:"percent"`
	Source    string  `json:"source"`
}
