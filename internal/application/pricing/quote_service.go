package pricing

import (
	"context"
	"fmt"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductLookup returns the cached catalog entry of a product
type ProductLookup interface {
	Product(ctx context.Context, id int64) (*catalog.Product, error)
}

// Quote is a resolved price together with the product it was resolved for
type Quote struct {
	Product    *catalog.Product
	Resolution pricing.PriceResolution
	IsBulk     bool
	Grams      decimal.Decimal
	GramFactor decimal.Decimal
	Quantity   int
	Degraded   bool
}

// Subtotal runs the shared line formula over the quote
func (q Quote) Subtotal() decimal.Decimal {
	return pricing.LineSubtotal(q.Resolution.Price, q.Quantity, q.IsBulk, q.Grams, q.GramFactor)
}

// QuoteService resolves effective unit prices against the current settings
type QuoteService struct {
	products ProductLookup
	settings *SettingsService
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(products ProductLookup, settings *SettingsService) *QuoteService {
	return &QuoteService{
		products: products,
		settings: settings,
	}
}

// Resolve prices one prospective line. Weight-priced products with grams > 0 take the
// bulk branch and carry quantity 1; every other line needs a positive quantity.
func (s *QuoteService) Resolve(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.Grams.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Requested grams of product %d cannot be negative", req.ProductID))
	}
	product, err := s.products.Product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	surcharges, err := s.settings.LoadSurcharges(ctx)
	if err != nil {
		return nil, err
	}

	var (
		overrides pricing.OverrideSet
		degraded  bool
	)
	if size := catalog.NormalizeSize(req.Size); size != "" {
		found, err := s.settings.GetOverride(ctx, product.ID, size)
		if err != nil {
			return nil, err
		}
		degraded = found.Degraded
		if found.Found {
			overrides = overrides.With(pricing.SizePriceOverride{ProductID: product.ID, Size: size, Price: found.Price})
		}
	}

	q := &Quote{
		Product:    product,
		Resolution: pricing.NewVariantPriceResolver(surcharges).Resolve(product, req.Size, overrides),
		IsBulk:     product.Unit.SoldByWeight(),
		Grams:      req.Grams,
		GramFactor: product.Unit.GramFactor(),
		Quantity:   req.Quantity,
		Degraded:   degraded,
	}
	if pricing.BulkApplies(q.IsBulk, q.Grams) {
		q.Quantity = 1
	} else if q.Quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Quantity of product %d must be positive", product.ID))
	}
	return q, nil
}

// Quote resolves a line and returns its response form
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	q, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{
		ProductID:         q.Product.ID,
		Size:              catalog.NormalizeSize(req.Size),
		UnitPrice:         q.Resolution.Price,
		BaseReference:     q.Resolution.BaseReference,
		IncrementPercent:  q.Resolution.IncrementPercent,
		PriceSource:       string(q.Resolution.Source),
		IsBulk:            pricing.BulkApplies(q.IsBulk, q.Grams),
		Grams:             q.Grams,
		GramFactor:        q.GramFactor,
		Quantity:          q.Quantity,
		EffectiveQuantity: pricing.EffectiveQuantity(q.Quantity, q.IsBulk, q.Grams, q.GramFactor),
		Subtotal:          q.Subtotal(),
		OverrideDegraded:  q.Degraded,
	}, nil
}

// Gain resolves the display-only margin of a product. An unreadable gain cache
// degrades to the catalog value instead of failing.
func (s *QuoteService) Gain(ctx context.Context, productID int64) (*GainResponse, error) {
	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	gains, err := s.settings.LoadGains(ctx)
	if err != nil {
		logger.L(ctx).Warn("gain cache unavailable, resolving from catalog only",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		gains = pricing.GainOverrides{}
	}
	return &GainResponse{
		ProductID: productID,
		Percent:   pricing.ResolveGainPercent(product, gains),
		Source:    gainSource(product, gains),
	}, nil
}

func gainSource(product *catalog.Product, gains pricing.GainOverrides) string {
	if product.HasFiniteGain() {
		return GainSourceCatalog
	}
	if v, ok := gains.CachedGain(product.ID); ok && pricing.UsableGain(v) {
		return GainSourceCache
	}
	return GainSourceNone
}
