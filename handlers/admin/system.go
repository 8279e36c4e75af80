package admin

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/response"
)

// SystemHealth returns per-component health for the admin panel
func (h *AdminHandler) SystemHealth(c *fiber.Ctx) error {
	return response.OK(c, h.monitor.Health(c.Context()))
}

// SystemMetrics returns store-wide entity counts
func (h *AdminHandler) SystemMetrics(c *fiber.Ctx) error {
	metrics, err := h.monitor.Metrics(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute metrics")
	}
	return response.OK(c, metrics)
}

// SystemStorage returns storage usage
func (h *AdminHandler) SystemStorage(c *fiber.Ctx) error {
	storage, err := h.monitor.Storage(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute storage metrics")
	}
	return response.OK(c, storage)
}

// APIUsage returns request aggregates for a 1 to 168 hour window
func (h *AdminHandler) APIUsage(c *fiber.Ctx) error {
	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil || hours < 1 || hours > 168 {
		return response.BadRequest(c, "hours must be an integer between 1 and 168")
	}

	usage, err := h.monitor.Usage(c.Context(), hours)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute API usage")
	}
	return response.OK(c, usage)
}

// SystemLogs returns request samples filtered by severity and date range
func (h *AdminHandler) SystemLogs(c *fiber.Ctx) error {
	severity := c.Query("severity")

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "from must be an RFC3339 timestamp")
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "to must be an RFC3339 timestamp")
		}
		to = &t
	}

	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	logs, err := h.monitor.Logs(c.Context(), severity, from, to, limit)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.OK(c, fiber.Map{
		"logs":  logs,
		"total": len(logs),
	})
}

// ActivityLogs returns the admin audit trail
func (h *AdminHandler) ActivityLogs(c *fiber.Ctx) error {
	page, perPage := pagination(c)

	logs, total, err := h.activity.List(services.ActivityFilter{
		Action:  c.Query("action"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to load activity logs")
	}
	return response.Paginated(c, "activity", logs, response.CalculatePagination(page, perPage, total))
}
