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
	importapp "github.com/orderops/backend/internal/application/import"
	orderapp "github.com/orderops/backend/internal/application/order"
	shipmentapp "github.com/orderops/backend/internal/application/shipment"
	"github.com/orderops/backend/internal/infrastructure/cache"
	"github.com/orderops/backend/internal/infrastructure/config"
	"github.com/orderops/backend/internal/infrastructure/logger"
	"github.com/orderops/backend/internal/infrastructure/metrics"
	"github.com/orderops/backend/internal/infrastructure/migration"
	"github.com/orderops/backend/internal/infrastructure/persistence"
	"github.com/orderops/backend/internal/infrastructure/telemetry"
	"github.com/orderops/backend/internal/interfaces/http/handler"
	"github.com/orderops/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.ConfigFor(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting order operations backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Tracing first so the database plugin picks up the global provider
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := migrateSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg), log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry(cfg.Metrics.Namespace)
		if err := reg.RegisterDB(sqlDB, cfg.App.Name); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
	}

	// Idempotency keys live in Redis when configured
	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	lookup := orderapp.NewListingProductLookup(listingRepo)
	var (
		ingestOpts []orderapp.IngestOption
		batchOpts  []shipmentapp.Option
	)
	if reg != nil {
		ingestOpts = append(ingestOpts, orderapp.WithIngestObserver(reg))
		batchOpts = append(batchOpts, shipmentapp.WithObserver(reg))
	}
	ingestService := orderapp.NewIngestService(scope, orderapp.NewNormalizer(lookup, log), log, ingestOpts...)
	orderQueries := orderapp.NewOrderQueryService(orderRepo, orderapp.NewRiskAnalyzer(lookup, cfg.Risk.CustomsThreshold))
	batchManager := shipmentapp.NewBatchManager(scope, cfg.Risk.CustomsThreshold, log, batchOpts...)
	shipmentQueries := shipmentapp.NewShipmentQueryService(shipmentRepo)
	priceImport := importapp.NewPriceListImportService(scope, log)
	inventoryImport := importapp.NewInventoryImportService(scope, log)
	resolver := shipmentapp.NewLocationResolver(inventoryRepo)

	engine, stopMiddleware, err := router.NewEngine(router.Deps{
		Config:      cfg,
		Logger:      log,
		Metrics:     reg,
		Idempotency: store,
	}, router.Handlers{
		Orders:    handler.NewOrderHandler(ingestService, orderQueries),
		Shipments: handler.NewShipmentHandler(batchManager, shipmentQueries),
		Catalog:   handler.NewCatalogHandler(priceImport, inventoryImport, resolver, cfg.Ingest.PriceListShippingFee),
		System:    handler.NewSystemHandler(version, sqlDB),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}
	defer stopMiddleware()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded migrations. An in-memory sqlite database
// cannot be shared with the migrator's own handle, so it and deployments that
// opt in use GORM auto-migration instead.
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.AutoMigrate || (cfg.Database.IsSQLite() && cfg.Database.Path == ":memory:") {
		log.Info("Auto-migrating schema")
		return db.AutoMigrate()
	}

	m, err := migration.Open(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
