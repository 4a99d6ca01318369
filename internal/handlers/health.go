package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"kouji-photo-backend/internal/models"
)

// HealthCheck probes one backing service. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// NewHealthHandler godoc
// @Summary     Health check
// @Description Returns the health status of the API and its configured backends
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func NewHealthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		response := models.HealthResponse{Status: "ok"}
		status := http.StatusOK
		for _, name := range names {
			if response.Checks == nil {
				response.Checks = make(map[string]string, len(names))
			}
			if err := checks[name](ctx); err != nil {
				response.Checks[name] = err.Error()
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Checks[name] = "ok"
		}
		c.JSON(status, response)
	}
}
