package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"proposal-generator/internal/logging"
)

// RequestLogger logs one line per request through the structured logger.
// Bodies are never logged.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":    v.Method,
				"path":      v.URIPath,
				"status":    v.Status,
				"duration":  v.Latency.String(),
				"remote_ip": v.RemoteIP,
			}

			logger := logging.LogWithRequestID(GetRequestID(c))
			switch {
			case v.Error != nil:
				logger.WithError(v.Error).Warn("Request failed", fields)
			case v.Status >= 500:
				logger.Error("Request completed with server error", fields)
			default:
				logger.Info("Request completed", fields)
			}
			return nil
		},
	})
}
