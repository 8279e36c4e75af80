package admin

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/middleware"
	"github.com/finassist/finchat-api/utils/response"
)

// ListConfig returns all runtime settings
func (h *AdminHandler) ListConfig(c *fiber.Ctx) error {
	settings, err := h.config.List()
	if err != nil {
		return response.InternalServerError(c, "Failed to load configuration")
	}
	return response.OK(c, fiber.Map{"settings": settings})
}

// GetConfig returns one setting by name
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	name := c.Params("name")

	setting, err := h.config.Get(name)
	if err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			return response.NotFound(c, "Config setting not found")
		}
		return response.InternalServerError(c, "Failed to load setting")
	}
	return response.OK(c, setting)
}

// UpdateConfigRequest carries a new setting value. Any JSON scalar is
// accepted and normalized against the setting's declared type.
type UpdateConfigRequest struct {
	Value interface{} `json:"value"`
}

// UpdateConfig validates and applies a new setting value
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	name := c.Params("name")

	var req UpdateConfigRequest
	if err := c.BodyParser(&req); err != nil || req.Value == nil {
		return response.BadRequest(c, "A value field is required")
	}

	setting, err := h.config.Update(name, fmt.Sprintf("%v", req.Value), admin, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSettingNotFound):
			return response.NotFound(c, "Config setting not found")
		case errors.Is(err, services.ErrInvalidSetting):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update setting")
		}
	}
	return response.OK(c, setting)
}

// ResetConfig restores a setting to its default value
func (h *AdminHandler) ResetConfig(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	name := c.Params("name")

	setting, err := h.config.ResetToDefault(name, admin, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			return response.NotFound(c, "Config setting not found")
		}
		return response.InternalServerError(c, "Failed to reset setting")
	}
	return response.OK(c, setting)
}
