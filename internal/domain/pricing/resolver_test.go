package pricing

import (
	"testing"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func harness(basePrice int64) *catalog.Product {
	return &catalog.Product{
		ID:        7,
		Name:      "Arnés acolchado",
		BasePrice: decimal.NewFromInt(basePrice),
		Unit:      valueobject.UnitEach,
		Active:    true,
		Sizes:     []string{"S", "M", "L", "XL"},
	}
}

func TestVariantPriceResolver_Resolve(t *testing.T) {
	resolver := NewVariantPriceResolver(DefaultSurchargeTable())
	product := harness(20000)

	t.Run("no size returns base price", func(t *testing.T) {
		res := resolver.Resolve(product, "", nil)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(20000)))
		assert.True(t, res.BaseReference.Equal(decimal.NewFromInt(20000)))
		assert.True(t, res.IncrementPercent.IsZero())
		assert.Equal(t, SourceBase, res.Source)
	})

	t.Run("size M applies 10 percent", func(t *testing.T) {
		res := resolver.Resolve(product, "M", nil)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(22000)), res.Price.String())
		assert.True(t, res.IncrementPercent.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, SourceSurcharge, res.Source)
	})

	t.Run("size lookup is case-insensitive", func(t *testing.T) {
		res := resolver.Resolve(product, " xl ", nil)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(26000)))
	})

	t.Run("unknown size falls back to base", func(t *testing.T) {
		res := resolver.Resolve(product, "XXL", nil)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(20000)))
		assert.True(t, res.IncrementPercent.IsZero())
	})

	t.Run("override replaces price verbatim", func(t *testing.T) {
		overrides := OverrideSet{OverrideKey(7, "l"): decimal.NewFromInt(31500)}
		res := resolver.Resolve(product, "L", overrides)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(31500)))
		assert.True(t, res.BaseReference.Equal(decimal.NewFromInt(20000)))
		assert.Equal(t, SourceOverride, res.Source)
	})

	t.Run("override for another product is ignored", func(t *testing.T) {
		overrides := OverrideSet{OverrideKey(8, "L"): decimal.NewFromInt(1)}
		res := resolver.Resolve(product, "L", overrides)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(24000)))
	})

	t.Run("override ignored when no size selected", func(t *testing.T) {
		overrides := OverrideSet{OverrideKey(7, "M"): decimal.NewFromInt(1)}
		res := resolver.Resolve(product, "", overrides)
		assert.True(t, res.Price.Equal(decimal.NewFromInt(20000)))
	})
}

func TestVariantPriceResolver_EveryTableEntry(t *testing.T) {
	table, err := NewSurchargeTable(map[string]decimal.Decimal{
		"S":    decimal.Zero,
		"M":    decimal.RequireFromString("12.5"),
		"Mini": decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	resolver := NewVariantPriceResolver(table)
	product := harness(18000)

	for label, pct := range table.Entries() {
		want := product.BasePrice.Mul(decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100))))
		got := resolver.Resolve(product, label, nil)
		assert.True(t, want.Equal(got.Price), "size %s: want %s got %s", label, want, got.Price)
	}
}

func TestSurchargeTable(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		table := DefaultSurchargeTable()
		assert.True(t, table.IncrementFor("S").IsZero())
		assert.True(t, table.IncrementFor("m").Equal(decimal.NewFromInt(10)))
		assert.True(t, table.IncrementFor("L").Equal(decimal.NewFromInt(20)))
		assert.True(t, table.IncrementFor("XL").Equal(decimal.NewFromInt(30)))
		assert.True(t, table.IncrementFor("XXL").IsZero())
		assert.True(t, table.Has("xl"))
		assert.False(t, table.Has("XXL"))
		assert.Equal(t, []string{"S", "M", "L", "XL"}, table.Labels())
	})

	t.Run("rejects negative increments", func(t *testing.T) {
		_, err := NewSurchargeTable(map[string]decimal.Decimal{"M": decimal.NewFromInt(-1)})
		assert.Error(t, err)
	})

	t.Run("rejects empty labels", func(t *testing.T) {
		_, err := NewSurchargeTable(map[string]decimal.Decimal{" ": decimal.NewFromInt(1)})
		assert.Error(t, err)
	})

	t.Run("entries is a copy", func(t *testing.T) {
		table := DefaultSurchargeTable()
		entries := table.Entries()
		entries["M"] = decimal.NewFromInt(99)
		assert.True(t, table.IncrementFor("M").Equal(decimal.NewFromInt(10)))
	})
}

func TestSizePriceOverride(t *testing.T) {
	o, err := NewSizePriceOverride(7, "l", decimal.NewFromInt(31500))
	require.NoError(t, err)
	assert.Equal(t, "L", o.Size)
	assert.Equal(t, "7:L", o.Key())

	id, size, err := ParseOverrideKey("7:l")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "L", size)

	_, _, err = ParseOverrideKey("seven:L")
	assert.Error(t, err)
	_, _, err = ParseOverrideKey("7")
	assert.Error(t, err)

	_, err = NewSizePriceOverride(7, "L", decimal.Zero)
	assert.Error(t, err)
	_, err = NewSizePriceOverride(0, "L", decimal.NewFromInt(1))
	assert.Error(t, err)
	_, err = NewSizePriceOverride(7, "", decimal.NewFromInt(1))
	assert.Error(t, err)

	set := OverrideSet{}.With(*o)
	price, ok := set.Lookup(7, "L")
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(31500)))
}
