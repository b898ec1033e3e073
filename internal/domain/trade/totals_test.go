package trade

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustLine(t *testing.T, productID int64, quantity int, unitPrice string, size string, isBulk bool, grams, gramFactor string) LineItem {
	t.Helper()
	line, err := NewLineItem(productID, "", quantity, dec(unitPrice), size, "", isBulk, dec(grams), dec(gramFactor))
	require.NoError(t, err)
	return *line
}

func TestComputeTotals_SaleScenario(t *testing.T) {
	lines := []LineItem{mustLine(t, 7, 2, "22000", "M", false, "0", "1")}

	totals := ComputeTotals(lines, DocumentSale)

	assert.True(t, totals.Subtotal.Equal(dec("44000")))
	assert.True(t, totals.Tax.Equal(dec("8360")))
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.Equal(dec("52360")))
}

func TestComputeTotals_BulkPurchaseScenario(t *testing.T) {
	lines := []LineItem{mustLine(t, 3, 1, "15000", "", true, "750", "1000")}

	totals := ComputeTotals(lines, DocumentPurchase)

	assert.True(t, totals.Subtotal.Equal(dec("11250")))
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.Equal(dec("11250")))
}

func TestComputeTotals_OrderIsTaxedAsSale(t *testing.T) {
	lines := []LineItem{mustLine(t, 7, 1, "10000", "", false, "0", "1")}
	totals := ComputeTotals(lines, DocumentOrder)
	assert.True(t, totals.Tax.Equal(dec("1900")))
	assert.True(t, totals.Total.Equal(dec("11900")))
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil, DocumentSale)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	lines := []LineItem{
		mustLine(t, 1, 3, "12990", "", false, "0", "1"),
		mustLine(t, 2, 1, "15000", "", true, "333", "1000"),
		mustLine(t, 3, 2, "22000", "M", false, "0", "1"),
		mustLine(t, 4, 1, "35", "", true, "200", "1"),
		mustLine(t, 5, 7, "1850.5", "", false, "0", "1"),
	}
	want := ComputeTotals(lines, DocumentSale)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]LineItem, len(lines))
		copy(shuffled, lines)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ComputeTotals(shuffled, DocumentSale)
		assert.True(t, want.Subtotal.Equal(got.Subtotal))
		assert.True(t, want.Tax.Equal(got.Tax))
		assert.True(t, want.Total.Equal(got.Total))
	}
}

func TestParseDocumentKind(t *testing.T) {
	k, err := ParseDocumentKind("purchase")
	require.NoError(t, err)
	assert.Equal(t, DocumentPurchase, k)
	assert.True(t, k.TaxRate().IsZero())

	_, err = ParseDocumentKind("refund")
	assert.Error(t, err)
}
