package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/petsupply/storefront/docs"
	"github.com/petsupply/storefront/internal/interfaces/http/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Handlers bundles the HTTP handlers of the storefront API
type Handlers struct {
	Catalog *handler.CatalogHandler
	Pricing *handler.PricingHandler
	Trade   *handler.TradeHandler
	System  *handler.SystemHandler
}

// Groups returns the domain groups of the storefront API
func (h Handlers) Groups() []*DomainGroup {
	products := NewDomainGroup("catalog", "/products").
		GET("", h.Catalog.ListProducts).
		GET("/:id", h.Catalog.GetProduct).
		GET("/:id/variants/size/:size", h.Pricing.GetSizeOverride).
		PUT("/:id/variants/size/:size", h.Pricing.SaveSizeOverride)

	pricing := NewDomainGroup("pricing", "/pricing").
		POST("/quote", h.Pricing.Quote).
		GET("/gain/:product_id", h.Pricing.GetGain).
		PUT("/gain/:product_id", h.Pricing.SaveGain)

	settings := NewDomainGroup("settings", "/settings").
		GET("", h.Pricing.GetSettings).
		GET("/surcharges", h.Pricing.GetSurcharges).
		PUT("/surcharges", h.Pricing.SaveSurcharges)

	cart := NewDomainGroup("cart", "").
		POST("/cart/lines", h.Trade.AddCartLine).
		POST("/totals", h.Trade.Totals)

	sales := NewDomainGroup("sales", "/sales").
		POST("", h.Trade.CreateSale).
		GET("/:id", h.Trade.GetSale).
		POST("/:id/void", h.Trade.VoidSale).
		POST("/:id/reactivate", h.Trade.ReactivateSale).
		GET("/:id/invoice", h.Trade.Invoice)

	purchases := NewDomainGroup("purchases", "/purchases").
		POST("", h.Trade.CreatePurchase).
		GET("/:id", h.Trade.GetPurchase).
		POST("/:id/void", h.Trade.VoidPurchase)

	orders := NewDomainGroup("orders", "/orders").
		POST("", h.Trade.PlaceOrder).
		GET("/:id", h.Trade.GetOrder).
		POST("/:id/confirm", h.Trade.ConfirmOrder)

	system := NewDomainGroup("system", "").
		GET("/health", h.System.Health)

	return []*DomainGroup{products, pricing, settings, cart, sales, purchases, orders, system}
}

// Install registers the storefront API on the engine. Liveness is also served at
// the root so liveness checks need no version prefix, next to the swagger UI.
func Install(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)
	for _, g := range h.Groups() {
		r.Register(g)
	}
	r.Setup()
	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

// DomainGroup collects the routes of one API area
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:   name,
		prefix: prefix,
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) add(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:   method,
		path:     path,
		handlers: handlers,
	})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPut, path, handlers)
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Len returns the number of routes in the group
func (dg *DomainGroup) Len() int {
	return len(dg.routes)
}
