// Package router assembles the gin engine of the ledger API.
package router

import (
	"net/http"

	"github.com/facturar/backend/internal/infrastructure/config"
	"github.com/facturar/backend/internal/infrastructure/logger"
	"github.com/facturar/backend/internal/infrastructure/telemetry"
	"github.com/facturar/backend/internal/interfaces/http/dto"
	"github.com/facturar/backend/internal/interfaces/http/handler"
	"github.com/facturar/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar mounts a group of routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Options configures the engine built by New
type Options struct {
	HTTP           config.HTTPConfig
	Logger         *zap.Logger
	Metrics        *telemetry.LedgerMetrics
	MetricsPath    string
	TracingEnabled bool
	ServiceName    string
	APIVersion     string
	Health         *handler.HealthHandler
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	opts       Options
	registrars []RouteRegistrar
}

// New creates the engine and installs the global middleware chain
func New(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "v1"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	_ = engine.SetTrustedProxies(opts.HTTP.TrustedProxies)

	engine.Use(middleware.RequestID(), logger.Recovery(opts.Logger), logger.GinMiddleware(opts.Logger))
	if opts.TracingEnabled {
		engine.Use(middleware.Tracing(opts.ServiceName)...)
	}
	if opts.Metrics != nil {
		engine.Use(middleware.Metrics(opts.Metrics))
	}

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	}
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors), middleware.BodyLimit(opts.HTTP.MaxBodySize))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponse("METHOD_NOT_ALLOWED", "Method not allowed", middleware.GetRequestID(c)))
	})

	return &Router{engine: engine, opts: opts}
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts the ambient routes and every registrar under /api/{version}
func (r *Router) Setup() *gin.Engine {
	if r.opts.Health != nil {
		r.engine.GET("/health", r.opts.Health.Health)
	}
	if r.opts.Metrics != nil {
		r.engine.GET(r.opts.MetricsPath, gin.WrapH(r.opts.Metrics.Handler()))
	}

	api := r.engine.Group("/api/" + r.opts.APIVersion)
	api.Use(middleware.Tenant())
	if r.opts.HTTP.RateLimitEnabled && r.opts.HTTP.RateLimitRequests > 0 && r.opts.HTTP.RateLimitWindow > 0 {
		limiter := middleware.NewRateLimiter(r.opts.HTTP.RateLimitRequests, r.opts.HTTP.RateLimitWindow, r.opts.HTTP.RateLimitBurst)
		api.Use(middleware.RateLimit(limiter))
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
