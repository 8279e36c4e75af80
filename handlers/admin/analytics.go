package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/utils/response"
)

func daysParam(c *fiber.Ctx) (int, bool) {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days < 1 || days > 365 {
		return 0, false
	}
	return days, true
}

// UserAnalytics returns engagement metrics over a 1 to 365 day window
func (h *AdminHandler) UserAnalytics(c *fiber.Ctx) error {
	days, ok := daysParam(c)
	if !ok {
		return response.BadRequest(c, "days must be an integer between 1 and 365")
	}

	analytics, err := h.analytics.Users(c.Context(), days)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute user analytics")
	}
	return response.OK(c, analytics)
}

// SessionAnalytics returns conversation metrics
func (h *AdminHandler) SessionAnalytics(c *fiber.Ctx) error {
	days, ok := daysParam(c)
	if !ok {
		return response.BadRequest(c, "days must be an integer between 1 and 365")
	}

	analytics, err := h.analytics.Sessions(c.Context(), days)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute session analytics")
	}
	return response.OK(c, analytics)
}

// DocumentAnalytics returns knowledge base metrics
func (h *AdminHandler) DocumentAnalytics(c *fiber.Ctx) error {
	days, ok := daysParam(c)
	if !ok {
		return response.BadRequest(c, "days must be an integer between 1 and 365")
	}

	analytics, err := h.analytics.Documents(c.Context(), days)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute document analytics")
	}
	return response.OK(c, analytics)
}
