package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
)

// Recovery converts a handler panic into an UnexpectedError response. The
// stack trace is only included in the body when includeStack is set.
func Recovery(includeStack bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				stackTrace := string(debug.Stack())

				logging.LogWithRequestID(GetRequestID(c)).Error("HTTP handler panic recovered", map[string]interface{}{
					"method":      c.Request().Method,
					"path":        c.Request().URL.Path,
					"panic":       fmt.Sprintf("%v", r),
					"stack_trace": stackTrace,
					"type":        "http_panic",
				})

				if c.Response().Committed {
					err = nil
					return
				}

				failure := proposal.NewUnexpectedError(fmt.Errorf("panic: %v", r))
				body := failure.Response()
				if includeStack {
					body.Stack = stackTrace
				}
				err = c.JSON(failure.Status, body)
			}()

			return next(c)
		}
	}
}
