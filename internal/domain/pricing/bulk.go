package pricing

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// ComputeBulkSubtotal prices a sub-unit request of a weight-priced product:
// (unitPrice / gramFactor) * grams. A non-positive gramFactor is treated as 1.
func ComputeBulkSubtotal(unitPrice, gramFactor, grams decimal.Decimal) decimal.Decimal {
	if !gramFactor.IsPositive() {
		gramFactor = one
	}
	// multiply before dividing so 10000/1000*250 stays exact
	return unitPrice.Mul(grams).Div(gramFactor)
}

// BulkApplies reports whether a line takes the bulk branch
func BulkApplies(isBulk bool, grams decimal.Decimal) bool {
	return isBulk && grams.IsPositive()
}

// EffectiveQuantity is grams/gramFactor for bulk lines, the integer quantity otherwise
func EffectiveQuantity(quantity int, isBulk bool, grams, gramFactor decimal.Decimal) decimal.Decimal {
	if BulkApplies(isBulk, grams) {
		if !gramFactor.IsPositive() {
			gramFactor = one
		}
		return grams.Div(gramFactor)
	}
	return decimal.NewFromInt(int64(quantity))
}

// LineSubtotal is the one subtotal formula shared by the cart, the invoice and the
// totals calculator. Bulk lines with grams > 0 use ComputeBulkSubtotal; every other
// line is quantity * unitPrice.
func LineSubtotal(unitPrice decimal.Decimal, quantity int, isBulk bool, grams, gramFactor decimal.Decimal) decimal.Decimal {
	if BulkApplies(isBulk, grams) {
		return ComputeBulkSubtotal(unitPrice, gramFactor, grams)
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
