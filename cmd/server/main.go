package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/petsupply/storefront/internal/application/catalog"
	pricingapp "github.com/petsupply/storefront/internal/application/pricing"
	tradeapp "github.com/petsupply/storefront/internal/application/trade"
	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/infrastructure/backend"
	"github.com/petsupply/storefront/internal/infrastructure/cache"
	"github.com/petsupply/storefront/internal/infrastructure/config"
	"github.com/petsupply/storefront/internal/infrastructure/event"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/petsupply/storefront/internal/infrastructure/persistence"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"github.com/petsupply/storefront/internal/interfaces/http/handler"
	"github.com/petsupply/storefront/internal/interfaces/http/middleware"
	"github.com/petsupply/storefront/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// maxRequestBody bounds JSON request bodies; the largest is a multi-line document
const maxRequestBody = 1 << 20

//	@title			Pet Supply Storefront API
//	@version		1.0
//	@description	Pricing, cart and stock reconciliation in front of the store backend
//	@host			localhost:8080
//	@BasePath		/api/v1
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
		Version:    version,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Local settings store
	storeFactory := cache.NewStoreFactory(cfg.Store, cfg.Redis,
		cache.WithLogger(log),
		cache.WithSQLStore(persistence.NewStoreOpener(cfg, log)),
	)
	store, err := storeFactory.CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to open settings store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing settings store", zap.Error(err))
		}
	}()

	// Backend client
	backendMetrics, err := telemetry.NewBackendMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create backend metrics", zap.Error(err))
	}
	client, err := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		APIToken:  cfg.Backend.APIToken,
		UserAgent: cfg.Backend.UserAgent,
	}, backend.WithLogger(log), backend.WithMetrics(backendMetrics))
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	stockView := inventory.NewStockView()
	catalogService := catalogapp.NewCatalogService(client, stockView)
	stockInvalidatedHandler := catalogapp.NewStockInvalidatedHandler(catalogService, log)
	eventBus.Subscribe(stockInvalidatedHandler, stockInvalidatedHandler.EventTypes()...)

	settingsService := pricingapp.NewSettingsService(store, client)
	quoteService := pricingapp.NewQuoteService(catalogService, settingsService)

	tradeMetrics, err := telemetry.NewTradeMetrics(telemetry.TradeMetricsConfig{
		Meter:  meter,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create trade metrics", zap.Error(err))
	}
	tradeMetrics.StartPeriodicCollection(ctx, stockView, cfg.Telemetry.MetricsInterval)

	reconciler := tradeapp.NewStockReconciler(client, stockView)
	reconciler.SetEventPublisher(eventBus)
	reconciler.SetMetrics(tradeMetrics)

	cartService := tradeapp.NewCartService(quoteService, reconciler)
	orderService := tradeapp.NewOrderService(client, cartService, reconciler, catalogService, settingsService)
	orderService.SetMetrics(tradeMetrics)

	// HTTP engine
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       meterProvider.IsEnabled(),
		}),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
		middleware.BodyLimit(maxRequestBody),
	)

	router.Install(engine, router.Handlers{
		Catalog: handler.NewCatalogHandler(catalogService),
		Pricing: handler.NewPricingHandler(quoteService, settingsService),
		Trade:   handler.NewTradeHandler(cartService, orderService),
		System:  handler.NewSystemHandler(cfg.App.Name, version, stockView),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	tradeMetrics.Stop()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
