package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the column store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes backed by a store ping
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (h *HealthHandler) storeUp(c echo.Context) bool {
	return h.store.Ping(c.Request().Context()) == nil
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	if !h.storeUp(c) {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Services: map[string]string{"store": "unhealthy"},
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Services: map[string]string{"store": "healthy"},
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	if !h.storeUp(c) {
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "not ready", Reason: "store ping failed"})
	}
	return c.JSON(http.StatusOK, ReadyResponse{Status: "ready"})
}
