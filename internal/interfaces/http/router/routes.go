package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/config"
	"github.com/orderops/backend/internal/infrastructure/logger"
	"github.com/orderops/backend/internal/infrastructure/metrics"
	"github.com/orderops/backend/internal/interfaces/http/dto"
	"github.com/orderops/backend/internal/interfaces/http/handler"
	"github.com/orderops/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups the API handlers mounted by NewEngine
type Handlers struct {
	Orders    *handler.OrderHandler
	Shipments *handler.ShipmentHandler
	Catalog   *handler.CatalogHandler
	System    *handler.SystemHandler
}

// Deps holds everything NewEngine needs besides the handlers
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Registry
	Idempotency shared.IdempotencyStore
}

// NewEngine builds the gin engine with the middleware chain and every API
// route. The returned func stops background workers of the middleware.
func NewEngine(deps Deps, h Handlers) (*gin.Engine, func(), error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, nil, err
	}
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	middleware.SetupValidator()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(deps.Metrics),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
	)

	engine.GET("/health", h.System.Health)
	if deps.Metrics != nil && cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	stop := func() {}
	uploads := []gin.HandlerFunc{middleware.BodyLimit(cfg.HTTP.MaxUploadSize)}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		stop = limiter.Close
		uploads = append(uploads, middleware.RateLimit(limiter))
	}
	jsonBody := middleware.BodyLimit(cfg.HTTP.MaxBodySize)

	var mutations []gin.HandlerFunc
	if deps.Idempotency != nil {
		ttl := cfg.Redis.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		mutations = append(mutations, middleware.Idempotency(deps.Idempotency, ttl))
	}
	mutation := chain([]gin.HandlerFunc{jsonBody}, mutations)
	uploadMutation := chain(uploads, mutations)

	orders := NewDomainGroup("orders", "/orders")
	orders.POST("/ingest", with(uploads, h.Orders.Ingest)...)
	orders.GET("/unshipped", h.Orders.ListUnshipped)
	orders.GET("/summary", h.Orders.Summary)
	orders.GET("/pending", h.Orders.Pending)
	orders.GET("/remainders", h.Orders.Remainders)
	orders.PUT("/:id/location", with(mutation, h.Shipments.UpdateLocation)...)

	shipments := NewDomainGroup("shipments", "/shipments")
	shipments.GET("", h.Shipments.List)
	shipments.POST("", with(mutation, h.Shipments.Create)...)
	shipments.POST("/review", jsonBody, h.Shipments.Review)
	shipments.POST("/split", with(mutation, h.Shipments.Split)...)
	shipments.POST("/merge", with(mutation, h.Shipments.Merge)...)
	shipments.POST("/merge/cancel", with(mutation, h.Shipments.CancelMerge)...)
	shipments.POST("/cancel", with(mutation, h.Shipments.Cancel)...)
	shipments.POST("/complete", with(uploadMutation, h.Shipments.Complete)...)
	shipments.POST("/complete/cancel", with(mutation, h.Shipments.CancelCompletion)...)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.POST("/prices/upload", with(uploads, h.Catalog.UploadPrices)...)
	catalog.POST("/inventory/upload", with(uploads, h.Catalog.UploadInventory)...)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/:code/stock", h.Catalog.Stock)

	NewRouter(engine).
		Register(orders).
		Register(shipments).
		Register(catalog).
		Register(inventory).
		Setup()

	return engine, stop, nil
}

// chain concatenates handler lists into a fresh slice
func chain(lists ...[]gin.HandlerFunc) []gin.HandlerFunc {
	var out []gin.HandlerFunc
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// with appends the final handler to a copy of the middleware chain
func with(middlewares []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	return append(chain(middlewares), last)
}
