package trade

import (
	"context"
	"fmt"

	pricingapp "github.com/petsupply/storefront/internal/application/pricing"
	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/shared/valueobject"
	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService drives the lifecycle of pedidos, ventas and compras
type OrderService struct {
	gateway    trade.OrderGateway
	cart       *CartService
	reconciler *StockReconciler
	products   pricingapp.ProductLookup
	settings   *pricingapp.SettingsService
	metrics    *telemetry.TradeMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(
	gateway trade.OrderGateway,
	cart *CartService,
	reconciler *StockReconciler,
	products pricingapp.ProductLookup,
	settings *pricingapp.SettingsService,
) *OrderService {
	return &OrderService{
		gateway:    gateway,
		cart:       cart,
		reconciler: reconciler,
		products:   products,
		settings:   settings,
	}
}

// SetMetrics sets the trade counters
func (s *OrderService) SetMetrics(metrics *telemetry.TradeMetrics) {
	s.metrics = metrics
}

// CreateSale creates a venta directly in Completada status
func (s *OrderService) CreateSale(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	return s.create(ctx, trade.KindVenta, req)
}

// CreatePurchase creates a compra in Activa status
func (s *OrderService) CreatePurchase(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	return s.create(ctx, trade.KindCompra, req)
}

// PlaceOrder creates a pedido in Pendiente status
func (s *OrderService) PlaceOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	return s.create(ctx, trade.KindPedido, req)
}

func (s *OrderService) create(ctx context.Context, kind trade.OrderKind, req CreateOrderRequest) (*OrderResponse, error) {
	order, err := trade.NewOrder(kind, req.CounterpartyID, req.CounterpartyName)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cannot submit a record without lines")
	}

	for i, lr := range req.Lines {
		result, err := s.cart.buildLine(ctx, kind, lr)
		if err != nil {
			return nil, withLineIndex(err, i)
		}
		if err := order.AddLine(result.Line); err != nil {
			return nil, err
		}
	}
	// lines were merged, so the check runs on the summed quantities
	if err := s.reconciler.ValidateOrder(ctx, order); err != nil {
		return nil, err
	}

	created, err := s.reconciler.Commit(ctx, order)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(s.withCatalogUnits(ctx, created))
	return &resp, nil
}

// withLineIndex prefixes a domain error with the position of the offending line
func withLineIndex(err error, index int) error {
	code := shared.CodeOf(err)
	if code == "" {
		return err
	}
	return shared.NewDomainError(code, fmt.Sprintf("Line %d: %s", index+1, err.Error()))
}

// Get reads a record through the backend; totals are recomputed from its lines
func (s *OrderService) Get(ctx context.Context, kind trade.OrderKind, id int64) (*OrderResponse, error) {
	order, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) load(ctx context.Context, kind trade.OrderKind, id int64) (*trade.Order, error) {
	if id <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("%s ID must be positive", kind))
	}
	order, err := s.gateway.Get(ctx, kind, id)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeNotFound {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("%s %d no longer exists, refresh the list", kind, id))
		}
		return nil, err
	}
	return s.withCatalogUnits(ctx, order), nil
}

// withCatalogUnits sets the gram factor of every weight-priced line from its product's
// declared unit. Lines of products the catalog cannot resolve keep the echoed factor.
func (s *OrderService) withCatalogUnits(ctx context.Context, order *trade.Order) *trade.Order {
	if order == nil {
		return nil
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		if !line.PricedByWeight() {
			continue
		}
		product, err := s.products.Product(ctx, line.ProductID)
		if err != nil {
			logger.L(ctx).Debug("unit lookup failed, keeping echoed gram factor",
				zap.Int64("product_id", line.ProductID),
				zap.Error(err),
			)
			continue
		}
		line.GramFactor = product.Unit.GramFactor()
	}
	return order
}

// ConfirmOrder confirms a pending pedido and returns the resulting venta
func (s *OrderService) ConfirmOrder(ctx context.Context, pedidoID int64) (*OrderResponse, error) {
	pedido, err := s.load(ctx, trade.KindPedido, pedidoID)
	if err != nil {
		return nil, err
	}
	sale, err := s.reconciler.Confirm(ctx, pedido)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(s.withCatalogUnits(ctx, sale))
	return &resp, nil
}

// VoidSale voids a venta
func (s *OrderService) VoidSale(ctx context.Context, id int64) (*VoidResponse, error) {
	return s.void(ctx, trade.KindVenta, id)
}

// VoidPurchase voids a compra
func (s *OrderService) VoidPurchase(ctx context.Context, id int64) (*VoidResponse, error) {
	return s.void(ctx, trade.KindCompra, id)
}

func (s *OrderService) void(ctx context.Context, kind trade.OrderKind, id int64) (*VoidResponse, error) {
	order, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	result, err := s.reconciler.Void(ctx, order)
	if err != nil {
		return nil, err
	}

	resp := &VoidResponse{Outcome: OutcomeVoided, AlreadyVoided: result.AlreadyVoided}
	if result.AlreadyVoided {
		resp.Outcome = OutcomeAlreadyVoided
	}
	if result.Order != nil {
		o := ToOrderResponse(s.withCatalogUnits(ctx, result.Order))
		resp.Order = &o
	}
	return resp, nil
}

// ReactivateSale sets an Anulada venta back to Completada. Only the status changes:
// no stock is decremented again. The cached stock of its products is still dropped.
func (s *OrderService) ReactivateSale(ctx context.Context, id int64) (*ReactivateResponse, error) {
	order, err := s.load(ctx, trade.KindVenta, id)
	if err != nil {
		return nil, err
	}
	if err := order.Reactivate(); err != nil {
		return nil, err
	}

	updated, err := s.gateway.SetStatus(ctx, trade.KindVenta, id, trade.StatusCompletada)
	if err != nil {
		order.ClearDomainEvents()
		return nil, err
	}
	if len(updated.Lines) == 0 {
		updated.Lines = order.Lines
	}
	updated.Status = trade.StatusCompletada
	s.withCatalogUnits(ctx, updated)

	s.reconciler.InvalidateAfterStatusChange(ctx, order)
	s.metrics.RecordReactivation(ctx)
	logger.L(ctx).Info("sale reactivated without stock mutation", zap.Int64("order_id", id))

	return &ReactivateResponse{Order: ToOrderResponse(updated), StockMutated: false}, nil
}

// Invoice builds the printable view of a sale. Each line subtotal goes through the
// same formula as the cart and the totals; the gain annotation never fails the invoice.
func (s *OrderService) Invoice(ctx context.Context, saleID int64) (*InvoiceResponse, error) {
	sale, err := s.load(ctx, trade.KindVenta, saleID)
	if err != nil {
		return nil, err
	}

	gains, err := s.settings.LoadGains(ctx)
	if err != nil {
		logger.L(ctx).Warn("gain cache unavailable for invoice", zap.Error(err))
		gains = pricing.GainOverrides{}
	}

	resp := &InvoiceResponse{
		SaleID:     sale.ID,
		Date:       sale.Date,
		ClientID:   sale.CounterpartyID,
		ClientName: sale.CounterpartyName,
		Status:     sale.Status.String(),
		Voided:     sale.IsVoided(),
		Currency:   string(valueobject.DefaultCurrency),
		Lines:      make([]InvoiceLine, 0, len(sale.Lines)),
		Totals:     sale.Totals(),
	}
	resp.TotalDisplay = valueobject.NewMoneyCOP(resp.Total).Display()
	for _, l := range sale.Lines {
		line := InvoiceLine{LineResponse: toLineResponse(l)}
		product, err := s.products.Product(ctx, l.ProductID)
		if err != nil {
			// a vanished product still gets its cached margin
			product = &catalog.Product{ID: l.ProductID}
		} else if line.ProductName == "" {
			line.ProductName = product.Name
		}
		line.GainPercent = pricing.ResolveGainPercent(product, gains)
		resp.Lines = append(resp.Lines, line)
	}
	return resp, nil
}

// Totals computes subtotal, tax, discount and total of caller-priced lines. The gram
// factor of a weight-priced line always comes from its product's declared unit.
func (s *OrderService) Totals(ctx context.Context, kind trade.DocumentKind, lines []TotalsLine) (*trade.Totals, error) {
	items := make([]trade.LineItem, 0, len(lines))
	for i, l := range lines {
		factor := decimal.NewFromInt(1)
		if pricing.BulkApplies(l.IsBulk, l.Grams) {
			product, err := s.products.Product(ctx, l.ProductID)
			if err != nil {
				return nil, withLineIndex(err, i)
			}
			factor = product.Unit.GramFactor()
		}
		item, err := trade.NewLineItem(l.ProductID, "", l.Quantity, l.UnitPrice, l.Size, l.Color, l.IsBulk, l.Grams, factor)
		if err != nil {
			return nil, withLineIndex(err, i)
		}
		items = append(items, *item)
	}
	totals := trade.ComputeTotals(items, kind)
	return &totals, nil
}
