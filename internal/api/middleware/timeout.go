package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig bounds the request context. Handlers observe the deadline
// through c.Request().Context(), so the outbound provider call is cancelled
// when it expires.
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	})
}
