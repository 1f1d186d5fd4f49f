package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proposal-generator/internal/api/routes"
	"proposal-generator/internal/config"
	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
	"proposal-generator/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting proposal generator", map[string]interface{}{
		"environment": cfg.App.Environment,
		"provider":    cfg.LLM.Provider,
	})

	generator, err := proposal.NewGeneratorFromConfig(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create proposal generator")
	}

	opts := routes.Options{}
	if cfg.RateLimit.Enabled {
		store, closeStore, err := ratelimit.NewStore(cfg)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create rate limiter")
		}
		defer closeStore()
		opts.RateLimiter = store

		logger.Info("Rate limiting enabled", map[string]interface{}{
			"requests_per_minute": cfg.RateLimit.RequestsPerMinute,
			"shared":              cfg.RateLimit.RedisURL != "",
		})
	}

	e := routes.NewServer(cfg, generator, opts)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error shutting down server")
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.WithField("address", address).Info("Server starting")

	if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
