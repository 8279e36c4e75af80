package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/response"
)

// AdminHandler serves the admin control plane
type AdminHandler struct {
	users     *services.AdminUserService
	documents *services.AdminDocumentService
	monitor   *services.SystemMonitorService
	analytics *services.AnalyticsService
	config    *services.ConfigManager
	activity  *services.ActivityLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users *services.AdminUserService,
	documents *services.AdminDocumentService,
	monitor *services.SystemMonitorService,
	analytics *services.AnalyticsService,
	config *services.ConfigManager,
	activity *services.ActivityLogger,
) *AdminHandler {
	return &AdminHandler{
		users:     users,
		documents: documents,
		monitor:   monitor,
		analytics: analytics,
		config:    config,
		activity:  activity,
	}
}

// pagination reads page/per_page query params with the 10..100 clamp
func pagination(c *fiber.Ctx) (page, perPage int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.Query("per_page", "50"))
	perPage = response.ClampPageSize(perPage)
	return page, perPage
}

// pathID parses a numeric id path parameter
func pathID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
