package trade

import (
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentKind selects the tax policy of a totals computation
type DocumentKind string

const (
	DocumentSale     DocumentKind = "sale"
	DocumentPurchase DocumentKind = "purchase"
	DocumentOrder    DocumentKind = "order"
)

// SaleTaxRate is the IVA applied to sales and client orders
var SaleTaxRate = decimal.RequireFromString("0.19")

// ParseDocumentKind validates a document kind
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch k := DocumentKind(s); k {
	case DocumentSale, DocumentPurchase, DocumentOrder:
		return k, nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidInput, "Document kind must be sale, purchase or order")
}

// TaxRate returns 19% for sales and orders; purchases are never taxed
func (k DocumentKind) TaxRate() decimal.Decimal {
	if k == DocumentPurchase {
		return decimal.Zero
	}
	return SaleTaxRate
}

// Totals is the aggregate of a line collection
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums line subtotals and applies the kind's tax policy.
// No discount engine exists; Discount is always zero.
func ComputeTotals(lines []LineItem, kind DocumentKind) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal())
	}
	tax := subtotal.Mul(kind.TaxRate())
	discount := decimal.Zero
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}
