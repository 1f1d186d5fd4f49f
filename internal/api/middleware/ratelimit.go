package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"proposal-generator/internal/logging"
	"proposal-generator/pkg/models"
)

// RateLimit limits requests per client IP. Preflight requests are never
// counted.
func RateLimit(store echomiddleware.RateLimiterStore) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Forbidden"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logging.LogWithRequestID(GetRequestID(c)).Warn("Rate limit exceeded", map[string]interface{}{
				"identifier": identifier,
				"path":       c.Request().URL.Path,
			})
			return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many requests"})
		},
	})
}
