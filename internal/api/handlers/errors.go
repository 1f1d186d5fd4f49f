package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"proposal-generator/internal/api/middleware"
	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
	"proposal-generator/pkg/models"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:            "Invalid request body",
	http.StatusNotFound:              "Not found",
	http.StatusMethodNotAllowed:      "Method not allowed",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusUnsupportedMediaType:  "Invalid request body",
	http.StatusTooManyRequests:       "Too many requests",
	http.StatusServiceUnavailable:    "Request timed out",
}

// HTTPErrorHandler renders errors that escape handlers and middleware in the
// same {error} shape the generate endpoint uses
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := models.ErrorResponse{Error: "Internal server error"}

	var httpErr *echo.HTTPError
	var tagged *proposal.Error
	switch {
	case errors.As(err, &tagged):
		status = tagged.Status
		body = tagged.Response()
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := statusMessages[status]; ok {
			body.Error = msg
		} else {
			body.Error = http.StatusText(status)
		}
	}

	if status >= http.StatusInternalServerError {
		logging.LogWithRequestID(middleware.GetRequestID(c)).WithError(err).Error("Unhandled request error", map[string]interface{}{
			"method": c.Request().Method,
			"path":   c.Request().URL.Path,
			"status": status,
		})
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		logging.GetGlobalLogger().WithError(writeErr).Error("Failed to write error response")
	}
}
