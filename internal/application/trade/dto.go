package trade

import (
	"time"

	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// LineRequest describes one requested line before pricing
type LineRequest struct {
	ProductID int64
	Quantity  int
	Size      string
	Color     string
	Grams     decimal.Decimal
	// UnitCost is the supplier price of a purchase line; ignored for sales and orders
	UnitCost *decimal.Decimal
}

// LineResult is a priced, validated line
type LineResult struct {
	Line             trade.LineItem  `json:"line"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	EffectiveQty     decimal.Decimal `json:"effective_quantity"`
	BaseReference    decimal.Decimal `json:"base_reference"`
	IncrementPercent decimal.Decimal `json:"increment_percent"`
	PriceSource      string          `json:"price_source"`
	StockAvailable   *int            `json:"stock_available,omitempty"`
	OverrideDegraded bool            `json:"override_degraded"`
}

// CreateOrderRequest creates a venta, compra or pedido from requested lines
type CreateOrderRequest struct {
	CounterpartyID   int64
	CounterpartyName string
	Lines            []LineRequest
}

// TotalsLine is a line already priced by the caller, used by the totals calculator
type TotalsLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Size      string
	Color     string
	IsBulk    bool
	Grams     decimal.Decimal
}

// LineResponse is one line of an order response
type LineResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	IsBulk      bool            `json:"is_bulk"`
	Grams       decimal.Decimal `json:"grams"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse is a record with totals recomputed from its lines
type OrderResponse struct {
	ID               int64          `json:"id"`
	Kind             string         `json:"kind"`
	Status           string         `json:"status"`
	Date             time.Time      `json:"date"`
	CounterpartyID   int64          `json:"counterparty_id"`
	CounterpartyName string         `json:"counterparty_name,omitempty"`
	SourceOrderID    int64          `json:"source_order_id,omitempty"`
	Lines            []LineResponse `json:"lines"`
	trade.Totals
}

// ToOrderResponse converts a record to its response form
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		Kind:             o.Kind.String(),
		Status:           o.Status.String(),
		Date:             o.Date,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		SourceOrderID:    o.SourceOrderID,
		Lines:            make([]LineResponse, 0, len(o.Lines)),
		Totals:           o.Totals(),
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, toLineResponse(l))
	}
	return resp
}

func toLineResponse(l trade.LineItem) LineResponse {
	return LineResponse{
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Size:        l.Size,
		Color:       l.Color,
		IsBulk:      l.PricedByWeight(),
		Grams:       l.Grams,
		Subtotal:    l.Subtotal(),
	}
}

// VoidOutcome values
const (
	OutcomeVoided        = "voided"
	OutcomeAlreadyVoided = "already_voided"
)

// VoidResponse is the result of a void request. An already voided record is an
// informational outcome, not an error.
type VoidResponse struct {
	Order         *OrderResponse `json:"order,omitempty"`
	Outcome       string         `json:"outcome"`
	AlreadyVoided bool           `json:"already_voided"`
}

// ReactivateResponse is the result of an administrative reactivation
type ReactivateResponse struct {
	Order        OrderResponse `json:"order"`
	StockMutated bool          `json:"stock_mutated"`
}

// InvoiceLine is a printed invoice line with its cosmetic margin annotation
type InvoiceLine struct {
	LineResponse
	GainPercent float64 `json:"gain_percent"`
}

// InvoiceResponse is the data of a printable sale invoice
type InvoiceResponse struct {
	SaleID     int64         `json:"sale_id"`
	Date       time.Time     `json:"date"`
	ClientID   int64         `json:"client_id"`
	ClientName string        `json:"client_name,omitempty"`
	Status     string        `json:"status"`
	Voided     bool          `json:"voided"`
	Currency   string        `json:"currency"`
	Lines      []InvoiceLine `json:"lines"`
	trade.Totals
	// TotalDisplay is the total as printed, e.g. "$52.360"
	TotalDisplay string `json:"total_display"`
}
