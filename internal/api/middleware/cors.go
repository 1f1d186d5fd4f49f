package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// CORS sets the CORS headers on every response, including errors and
// preflight replies. echo's CORS middleware only sets Allow-Methods on
// preflight and answers it with 204, so the headers are written here instead.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, corsAllowOrigin)
			header.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
			header.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			return next(c)
		}
	}
}
