package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/petsupply/storefront/internal/application/catalog"
	pricingapp "github.com/petsupply/storefront/internal/application/pricing"
	tradeapp "github.com/petsupply/storefront/internal/application/trade"
	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared/valueobject"
	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/petsupply/storefront/internal/infrastructure/cache"
	"github.com/petsupply/storefront/internal/infrastructure/event"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
	"github.com/petsupply/storefront/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockProductCatalog is a mock implementation of catalog.ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductCatalog) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockOrderGateway is a mock implementation of trade.OrderGateway
type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) Create(ctx context.Context, order *trade.Order) (*trade.Order, error) {
	args := m.Called(ctx, order)
	if fn, ok := args.Get(0).(func(*trade.Order) *trade.Order); ok {
		return fn(order), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderGateway) Get(ctx context.Context, kind trade.OrderKind, id int64) (*trade.Order, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderGateway) Confirm(ctx context.Context, pedidoID int64) (*trade.Order, error) {
	args := m.Called(ctx, pedidoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderGateway) Void(ctx context.Context, kind trade.OrderKind, id int64) (*trade.Order, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderGateway) SetStatus(ctx context.Context, kind trade.OrderKind, id int64, status trade.OrderStatus) (*trade.Order, error) {
	args := m.Called(ctx, kind, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

// MockOverrideSource is a mock implementation of pricing.OverrideSource
type MockOverrideSource struct {
	mock.Mock
}

func (m *MockOverrideSource) GetSizeOverride(ctx context.Context, productID int64, size string) (*pricing.SizePriceOverride, error) {
	args := m.Called(ctx, productID, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.SizePriceOverride), args.Error(1)
}

func (m *MockOverrideSource) SaveSizeOverride(ctx context.Context, override pricing.SizePriceOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func collar() *catalog.Product {
	return &catalog.Product{
		ID:        7,
		Name:      "Collar",
		BasePrice: decimal.NewFromInt(20000),
		Unit:      valueobject.UnitEach,
		Active:    true,
		Stock:     5,
		Sizes:     []string{"S", "M", "L"},
	}
}

func concentrate() *catalog.Product {
	gain := 18.0
	return &catalog.Product{
		ID:          3,
		Name:        "Concentrado",
		BasePrice:   decimal.NewFromInt(15000),
		Unit:        valueobject.UnitKilogram,
		Active:      true,
		Stock:       40,
		GainPercent: &gain,
	}
}

type apiFixture struct {
	products  *MockProductCatalog
	gateway   *MockOrderGateway
	overrides *MockOverrideSource
	view      *inventory.StockView
	catalog   *catalogapp.CatalogService
	router    *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		products:  new(MockProductCatalog),
		gateway:   new(MockOrderGateway),
		overrides: new(MockOverrideSource),
		view:      inventory.NewStockView(),
	}
	f.catalog = catalogapp.NewCatalogService(f.products, f.view)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(catalogapp.NewStockInvalidatedHandler(f.catalog, zap.NewNop()), inventory.EventTypeStockInvalidated)

	settings := pricingapp.NewSettingsService(cache.NewInMemoryKVStore(), f.overrides)
	quotes := pricingapp.NewQuoteService(f.catalog, settings)
	reconciler := tradeapp.NewStockReconciler(f.gateway, f.view)
	reconciler.SetEventPublisher(bus)
	cart := tradeapp.NewCartService(quotes, reconciler)
	orders := tradeapp.NewOrderService(f.gateway, cart, reconciler, f.catalog, settings)

	catalogHandler := NewCatalogHandler(f.catalog)
	pricingHandler := NewPricingHandler(quotes, settings)
	tradeHandler := NewTradeHandler(cart, orders)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.GET("/products", catalogHandler.ListProducts)
	api.GET("/products/:id", catalogHandler.GetProduct)
	api.GET("/products/:id/variants/size/:size", pricingHandler.GetSizeOverride)
	api.PUT("/products/:id/variants/size/:size", pricingHandler.SaveSizeOverride)
	api.POST("/pricing/quote", pricingHandler.Quote)
	api.GET("/pricing/gain/:product_id", pricingHandler.GetGain)
	api.PUT("/pricing/gain/:product_id", pricingHandler.SaveGain)
	api.GET("/settings", pricingHandler.GetSettings)
	api.GET("/settings/surcharges", pricingHandler.GetSurcharges)
	api.PUT("/settings/surcharges", pricingHandler.SaveSurcharges)
	api.POST("/cart/lines", tradeHandler.AddCartLine)
	api.POST("/totals", tradeHandler.Totals)
	api.POST("/sales", tradeHandler.CreateSale)
	api.GET("/sales/:id", tradeHandler.GetSale)
	api.POST("/sales/:id/void", tradeHandler.VoidSale)
	api.POST("/sales/:id/reactivate", tradeHandler.ReactivateSale)
	api.GET("/sales/:id/invoice", tradeHandler.Invoice)
	api.POST("/purchases", tradeHandler.CreatePurchase)
	api.GET("/purchases/:id", tradeHandler.GetPurchase)
	api.POST("/purchases/:id/void", tradeHandler.VoidPurchase)
	api.POST("/orders", tradeHandler.PlaceOrder)
	api.GET("/orders/:id", tradeHandler.GetOrder)
	api.POST("/orders/:id/confirm", tradeHandler.ConfirmOrder)
	f.router = r

	return f
}

// apiResponse mirrors dto.Response; data lands in Data for objects and in List for arrays
type apiResponse struct {
	Success bool            `json:"success"`
	RawData json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`

	Data map[string]any   `json:"-"`
	List []map[string]any `json:"-"`
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if raw := bytes.TrimSpace(resp.RawData); len(raw) > 0 {
		switch raw[0] {
		case '{':
			require.NoError(t, json.Unmarshal(raw, &resp.Data))
		case '[':
			require.NoError(t, json.Unmarshal(raw, &resp.List))
		}
	}
	return w, resp
}

func assignID(id int64) func(*trade.Order) *trade.Order {
	return func(o *trade.Order) *trade.Order {
		created := *o
		created.ID = id
		created.Lines = append([]trade.LineItem(nil), o.Lines...)
		return &created
	}
}

func storedRecord(kind trade.OrderKind, id int64, status trade.OrderStatus) *trade.Order {
	line, _ := trade.NewLineItem(7, "Collar", 2, decimal.NewFromInt(22000), "M", "", false, decimal.Zero, decimal.NewFromInt(1))
	o := &trade.Order{
		Kind:           kind,
		CounterpartyID: 1,
		Lines:          []trade.LineItem{*line},
		Status:         status,
	}
	o.ID = id
	return o
}
