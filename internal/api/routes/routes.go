package routes

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"proposal-generator/internal/api/handlers"
	"proposal-generator/internal/api/middleware"
	"proposal-generator/internal/config"
	"proposal-generator/internal/proposal"
)

// Options controls how the routes are mounted
type Options struct {
	// Serverless also mounts the generate handler at "/" and drops the banner,
	// since the function is invoked on its own path
	Serverless bool
	// RateLimiter enables the inbound rate limiter on the generate endpoint
	RateLimiter echomiddleware.RateLimiterStore
}

// NewServer creates an echo instance with every route and middleware installed
func NewServer(cfg *config.Config, generator *proposal.Generator, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	SetupRoutes(e, cfg, generator, opts)
	return e
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, generator *proposal.Generator, opts Options) {
	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recovery(cfg.IsDevelopment()))
	e.Use(echomiddleware.BodyLimit(cfg.Server.BodyLimit))

	generateMiddleware := []echo.MiddlewareFunc{}
	if opts.RateLimiter != nil {
		generateMiddleware = append(generateMiddleware, middleware.RateLimit(opts.RateLimiter))
	}
	// The provider call has its own client timeout; the route deadline sits above it
	if cfg.Server.WriteTimeout > 0 {
		generateMiddleware = append(generateMiddleware, middleware.TimeoutConfig(cfg.Server.WriteTimeout))
	}

	// Redis-backed stores are reported by the readiness check
	var store handlers.Pinger
	if pinger, ok := opts.RateLimiter.(handlers.Pinger); ok {
		store = pinger
	}

	generate := handlers.GenerateHandler(generator)
	e.Any("/api/generate", generate, generateMiddleware...)

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(generator, store))
		health.GET("/logging", handlers.LoggingHealthHandler)
	}

	if opts.Serverless {
		e.Any("/", generate, generateMiddleware...)
		return
	}

	// Root route
	e.GET("/", handlers.RootHandler(cfg.App.Name))
}
