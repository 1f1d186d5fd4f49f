package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"proposal-generator/internal/api/middleware"
	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
	"proposal-generator/pkg/models"
)

// GenerateHandler handles /api/generate for every method: OPTIONS is a
// preflight, POST generates a proposal and anything else is rejected
func GenerateHandler(generator *proposal.Generator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.GetRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		switch c.Request().Method {
		case http.MethodOptions:
			return c.NoContent(http.StatusOK)
		case http.MethodPost:
		default:
			return c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
		}

		var req models.ProposalRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to parse request body", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		}

		logger.Info("Processing proposal request", map[string]interface{}{
			"provider":           generator.ProviderName(),
			"description_length": len(req.JobDescription),
			"has_skills":         req.Skills != "",
			"has_experience":     req.Experience != "",
		})

		startTime := time.Now()
		text, err := generator.Generate(c.Request().Context(), req)
		if err != nil {
			failure := proposal.AsError(err)
			logger.Error("Proposal generation failed", map[string]interface{}{
				"kind":     string(failure.Kind),
				"status":   failure.Status,
				"error":    failure.Error(),
				"duration": time.Since(startTime).String(),
			})
			return c.JSON(failure.Status, failure.Response())
		}

		return c.JSON(http.StatusOK, models.ProposalResponse{Proposal: text})
	}
}
