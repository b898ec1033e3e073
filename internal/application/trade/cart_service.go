package trade

import (
	"context"
	"fmt"
	"strings"

	pricingapp "github.com/petsupply/storefront/internal/application/pricing"
	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/trade"
)

// CartService builds priced lines. Every check here happens before any network
// submission: variant requirements, inactive products and the advisory stock check.
type CartService struct {
	quotes     *pricingapp.QuoteService
	reconciler *StockReconciler
}

// NewCartService creates a new CartService
func NewCartService(quotes *pricingapp.QuoteService, reconciler *StockReconciler) *CartService {
	return &CartService{
		quotes:     quotes,
		reconciler: reconciler,
	}
}

// AddLine prices one line for a record of the given kind and checks it against the
// cached stock. Purchases add stock and are never checked.
func (s *CartService) AddLine(ctx context.Context, kind trade.OrderKind, req LineRequest) (*LineResult, error) {
	result, err := s.buildLine(ctx, kind, req)
	if err != nil {
		return nil, err
	}
	if kind == trade.KindCompra {
		return result, nil
	}

	if err := s.reconciler.ValidateAvailability(ctx, result.Line.ProductID, result.EffectiveQty); err != nil {
		return nil, err
	}
	if entry, ok := s.reconciler.view.Get(result.Line.ProductID); ok {
		available := entry.Available
		result.StockAvailable = &available
	}
	return result, nil
}

func (s *CartService) buildLine(ctx context.Context, kind trade.OrderKind, req LineRequest) (*LineResult, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown record kind %q", kind))
	}

	quote, err := s.quotes.Resolve(ctx, pricingapp.QuoteRequest{
		ProductID: req.ProductID,
		Size:      req.Size,
		Quantity:  req.Quantity,
		Grams:     req.Grams,
	})
	if err != nil {
		return nil, err
	}
	product := quote.Product

	if err := checkVariant(product, kind, req); err != nil {
		return nil, err
	}

	price := quote.Resolution.Price
	if kind == trade.KindCompra {
		price = product.BasePrice
		if req.UnitCost != nil {
			price = *req.UnitCost
		}
	}

	line, err := trade.NewLineItem(
		product.ID,
		product.Name,
		quote.Quantity,
		price,
		req.Size,
		req.Color,
		quote.IsBulk,
		quote.Grams,
		quote.GramFactor,
	)
	if err != nil {
		return nil, err
	}

	return &LineResult{
		Line:             *line,
		Subtotal:         line.Subtotal(),
		EffectiveQty:     line.EffectiveQuantity(),
		BaseReference:    quote.Resolution.BaseReference,
		IncrementPercent: quote.Resolution.IncrementPercent,
		PriceSource:      string(quote.Resolution.Source),
		OverrideDegraded: quote.Degraded,
	}, nil
}

func checkVariant(product *catalog.Product, kind trade.OrderKind, req LineRequest) error {
	if kind != trade.KindCompra && !product.Active {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Product %d (%s) is inactive and cannot be sold", product.ID, product.Name))
	}
	var missing []string
	if product.RequiresSize() && catalog.NormalizeSize(req.Size) == "" {
		missing = append(missing, "a size")
	}
	if product.RequiresColor() && catalog.NormalizeColor(req.Color) == "" {
		missing = append(missing, "a color")
	}
	if len(missing) == 0 {
		return nil
	}
	return shared.NewDomainError(shared.CodeInvalidInput,
		fmt.Sprintf("Product %d (%s) requires %s", product.ID, product.Name, strings.Join(missing, " and ")))
}
