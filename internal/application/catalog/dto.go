package catalog

import (
	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a cached catalog product in API responses
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category,omitempty"`
	GainPercent *float64        `json:"gain_percent,omitempty"`
	Active      bool            `json:"active"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
	IsBulk      bool            `json:"is_bulk"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		BasePrice: p.BasePrice,
		Unit:      string(p.Unit),
		Category:  p.Category,
		Active:    p.Active,
		Stock:     p.Stock,
		Sizes:     p.Sizes,
		Colors:    p.Colors,
		IsBulk:    p.Unit.SoldByWeight(),
	}
	if p.HasFiniteGain() {
		g := *p.GainPercent
		resp.GainPercent = &g
	}
	return resp
}

// ToProductResponses converts a slice of domain Products to ProductResponses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
