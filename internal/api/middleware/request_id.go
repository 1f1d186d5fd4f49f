package middleware

import (
	"github.com/labstack/echo/v4"

	"proposal-generator/pkg/utils"
)

// RequestIDKey is the echo context key holding the request ID
const RequestIDKey = "request_id"

// RequestID tags each request with an ID. A valid incoming X-Request-ID is
// reused so IDs can be correlated across hops.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if !utils.IsValidRequestID(requestID) {
				requestID = utils.GenerateRequestID()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request ID set by RequestID, or an empty string
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
