package health

import (
	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
)

// HealthHandler serves the public health endpoint
type HealthHandler struct {
	monitor *services.SystemMonitorService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(monitor *services.SystemMonitorService) *HealthHandler {
	return &HealthHandler{monitor: monitor}
}

// Check probes every component and returns 200 when the service can serve
// queries, 503 otherwise. The body carries per-component status either way.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := h.monitor.Health(c.Context())

	code := fiber.StatusOK
	if !status.Healthy() {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(status)
}
