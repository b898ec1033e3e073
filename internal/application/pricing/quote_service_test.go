package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/shared/valueobject"
	"github.com/petsupply/storefront/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collar() *catalog.Product {
	return &catalog.Product{
		ID:        7,
		Name:      "Collar",
		BasePrice: decimal.NewFromInt(20000),
		Unit:      valueobject.UnitEach,
		Active:    true,
		Sizes:     []string{"S", "M", "L"},
	}
}

func concentrate() *catalog.Product {
	gain := 25.0
	return &catalog.Product{
		ID:          3,
		Name:        "Concentrado",
		BasePrice:   decimal.NewFromInt(15000),
		Unit:        valueobject.UnitKilogram,
		Active:      true,
		GainPercent: &gain,
	}
}

func TestQuoteService_SizeSurcharge(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	remote := new(MockOverrideSource)
	remote.On("GetSizeOverride", ctx, int64(7), "M").Return(nil, shared.NewDomainError(shared.CodeNotFound, "none"))
	settings, _ := newSettingsService(remote)

	q, err := NewQuoteService(products, settings).Quote(ctx, QuoteRequest{ProductID: 7, Size: "m", Quantity: 2})
	require.NoError(t, err)

	assert.True(t, q.UnitPrice.Equal(decimal.NewFromInt(22000)))
	assert.True(t, q.BaseReference.Equal(decimal.NewFromInt(20000)))
	assert.True(t, q.IncrementPercent.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, string(pricing.SourceSurcharge), q.PriceSource)
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(44000)))
	assert.Equal(t, "M", q.Size)
	assert.False(t, q.IsBulk)
}

func TestQuoteService_OverrideReplacesPrice(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	remote := new(MockOverrideSource)
	remote.On("GetSizeOverride", ctx, int64(7), "L").
		Return(&pricing.SizePriceOverride{ProductID: 7, Size: "L", Price: decimal.NewFromInt(21000)}, nil)
	settings, _ := newSettingsService(remote)

	q, err := NewQuoteService(products, settings).Quote(ctx, QuoteRequest{ProductID: 7, Size: "L", Quantity: 1})
	require.NoError(t, err)
	assert.True(t, q.UnitPrice.Equal(decimal.NewFromInt(21000)), "override wins over the L surcharge")
	assert.Equal(t, string(pricing.SourceOverride), q.PriceSource)
}

func TestQuoteService_UnknownSizeResolvesToBase(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	settings, _ := newSettingsService(nil)

	q, err := NewQuoteService(products, settings).Quote(ctx, QuoteRequest{ProductID: 7, Size: "XXL", Quantity: 1})
	require.NoError(t, err)
	assert.True(t, q.UnitPrice.Equal(decimal.NewFromInt(20000)))
	assert.True(t, q.IncrementPercent.IsZero())
}

func TestQuoteService_BulkLine(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(3)).Return(concentrate(), nil)
	settings, _ := newSettingsService(nil)
	svc := NewQuoteService(products, settings)

	q, err := svc.Quote(ctx, QuoteRequest{ProductID: 3, Grams: decimal.NewFromInt(750)})
	require.NoError(t, err)
	assert.True(t, q.IsBulk)
	assert.Equal(t, 1, q.Quantity)
	assert.True(t, q.GramFactor.Equal(decimal.NewFromInt(1000)))
	assert.True(t, q.EffectiveQuantity.Equal(decimal.RequireFromString("0.75")))
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(11250)))

	whole, err := svc.Quote(ctx, QuoteRequest{ProductID: 3, Quantity: 2})
	require.NoError(t, err)
	assert.False(t, whole.IsBulk, "no grams means whole units")
	assert.True(t, whole.Subtotal.Equal(decimal.NewFromInt(30000)))
}

func TestQuoteService_Validation(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	products.On("Product", ctx, int64(99)).Return(nil, shared.NewDomainError(shared.CodeNotFound, "Product 99 not found"))
	settings, _ := newSettingsService(nil)
	svc := NewQuoteService(products, settings)

	_, err := svc.Quote(ctx, QuoteRequest{ProductID: 7, Quantity: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Quote(ctx, QuoteRequest{ProductID: 7, Quantity: 1, Grams: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Quote(ctx, QuoteRequest{ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestQuoteService_Gain(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(3)).Return(concentrate(), nil)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	settings, _ := newSettingsService(nil)
	svc := NewQuoteService(products, settings)

	g, err := svc.Gain(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 25.0, g.Percent)
	assert.Equal(t, GainSourceCatalog, g.Source)

	g, err = svc.Gain(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Percent)
	assert.Equal(t, GainSourceNone, g.Source)

	require.NoError(t, settings.SaveGain(ctx, 7, 140))
	g, err = svc.Gain(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 100.0, g.Percent, "cached value is clamped")
	assert.Equal(t, GainSourceCache, g.Source)
}

func TestQuoteService_Gain_UnusableCacheEntry(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	settings, store := newSettingsService(nil)
	svc := NewQuoteService(products, settings)

	require.NoError(t, store.Set(ctx, pricing.GainKey(7), "+Inf"))
	g, err := svc.Gain(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Percent)
	assert.Equal(t, GainSourceNone, g.Source, "source agrees with the resolved value")
}

// unreadableStore fails every listing
type unreadableStore struct {
	*cache.InMemoryKVStore
}

func (unreadableStore) List(context.Context, string) (map[string]string, error) {
	return nil, errors.New("store offline")
}

func TestQuoteService_Gain_UnreadableCache(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductLookup)
	products.On("Product", ctx, int64(3)).Return(concentrate(), nil)
	products.On("Product", ctx, int64(7)).Return(collar(), nil)
	svc := NewQuoteService(products, NewSettingsService(unreadableStore{cache.NewInMemoryKVStore()}, nil))

	g, err := svc.Gain(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 25.0, g.Percent)
	assert.Equal(t, GainSourceCatalog, g.Source)

	g, err = svc.Gain(ctx, 7)
	require.NoError(t, err, "gain never fails on the cache")
	assert.Equal(t, 0.0, g.Percent)
	assert.Equal(t, GainSourceNone, g.Source)
}
