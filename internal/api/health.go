package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthTimeout = 2 * time.Second

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck handles GET /api/health by pinging the database.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthTimeout)
	defer cancel()

	if err := c.DS.Ping(pingCtx); err != nil {
		return c.HandleError(ctx, err, "Database unavailable", http.StatusServiceUnavailable)
	}
	return ctx.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
