package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"proposal-generator/internal/api/middleware"
	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
	"proposal-generator/pkg/models"
	"proposal-generator/pkg/utils"
)

// Version is reported by the health endpoints and the root banner
const Version = "1.0.0"

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.LogWithRequestID(middleware.GetRequestID(c)).Debug("Health check requested")

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    utils.FormatDuration(time.Since(startTime)),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	logging.LogWithRequestID(middleware.GetRequestID(c)).Debug("Liveness check requested")

	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    utils.FormatDuration(time.Since(startTime)),
	}

	return c.JSON(http.StatusOK, response)
}

// Pinger is a backing service whose connectivity the readiness check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessHandler reports whether the generator can serve requests. It only
// inspects local configuration and never calls the provider. When store is
// set its connectivity is reported too; the rate limiter fails open, so an
// unreachable store does not make the service unready.
func ReadinessHandler(generator *proposal.Generator, store Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		logging.LogWithRequestID(middleware.GetRequestID(c)).Debug("Readiness check requested")

		response := models.HealthResponse{
			Status:    "ready",
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    utils.FormatDuration(time.Since(startTime)),
			Checks: map[string]string{
				"api":      "ok",
				"provider": generator.ProviderName(),
				"api_key":  "configured",
			},
		}

		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			err := store.Ping(ctx)
			cancel()
			if err != nil {
				logging.LogWithRequestID(middleware.GetRequestID(c)).WithError(err).Warn("Rate limit store unreachable")
				response.Checks["rate_limit_store"] = "unavailable"
			} else {
				response.Checks["rate_limit_store"] = "ok"
			}
		}

		if !generator.Ready() {
			response.Status = "not_ready"
			response.Checks["api_key"] = "missing"
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		return c.JSON(http.StatusOK, response)
	}
}

// RootHandler returns the service banner
func RootHandler(serviceName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": serviceName,
			"version": Version,
			"status":  "running",
		})
	}
}

// LoggingHealthHandler reports the state of the logging adapters
func LoggingHealthHandler(c echo.Context) error {
	adapters := logging.LoggingStatus()

	status := "healthy"
	for _, adapter := range adapters {
		if !adapter.Healthy || adapter.WriteFailures > 0 || adapter.Dropped > 0 {
			status = "degraded"
			break
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"adapters":  adapters,
	})
}
