package trade

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one priced line of a pedido, venta or compra
type LineItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Grams       decimal.Decimal `json:"grams"`
	IsBulk      bool            `json:"is_bulk"`
	GramFactor  decimal.Decimal `json:"gram_factor"`
}

// NewLineItem validates and normalises a line.
// Bulk lines with grams > 0 are priced by weight and carry quantity 1.
func NewLineItem(productID int64, productName string, quantity int, unitPrice decimal.Decimal, size, color string, isBulk bool, grams, gramFactor decimal.Decimal) (*LineItem, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unit price of product %d cannot be negative", productID))
	}
	if grams.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Requested grams of product %d cannot be negative", productID))
	}
	if !gramFactor.IsPositive() {
		gramFactor = decimal.NewFromInt(1)
	}

	bulk := pricing.BulkApplies(isBulk, grams)
	if bulk {
		quantity = 1
	} else if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Quantity of product %d must be positive", productID))
	}

	return &LineItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Size:        catalog.NormalizeSize(size),
		Color:       catalog.NormalizeColor(color),
		Grams:       grams,
		IsBulk:      isBulk,
		GramFactor:  gramFactor,
	}, nil
}

// Subtotal returns the line subtotal through the shared pricing formula
func (l LineItem) Subtotal() decimal.Decimal {
	return pricing.LineSubtotal(l.UnitPrice, l.Quantity, l.IsBulk, l.Grams, l.GramFactor)
}

// EffectiveQuantity is the amount of priced units the line consumes
func (l LineItem) EffectiveQuantity() decimal.Decimal {
	return pricing.EffectiveQuantity(l.Quantity, l.IsBulk, l.Grams, l.GramFactor)
}

// PricedByWeight reports whether the bulk branch applies to this line
func (l LineItem) PricedByWeight() bool {
	return pricing.BulkApplies(l.IsBulk, l.Grams)
}

// MergeKey identifies lines that collapse into one when added twice. Lines of the
// same variant at different unit prices stay separate.
func (l LineItem) MergeKey() string {
	return strings.Join([]string{
		strconv.FormatInt(l.ProductID, 10),
		catalog.NormalizeSize(l.Size),
		strings.ToLower(catalog.NormalizeColor(l.Color)),
		strconv.FormatBool(l.PricedByWeight()),
		l.UnitPrice.String(),
	}, "|")
}

// merge folds other into l; both must share MergeKey
func (l *LineItem) merge(other LineItem) {
	if l.PricedByWeight() {
		l.Grams = l.Grams.Add(other.Grams)
		return
	}
	l.Quantity += other.Quantity
}
