package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/middleware"
	"github.com/finassist/finchat-api/utils/response"
)

// ListUsers returns users with pagination and optional filters
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, perPage := pagination(c)

	filter := services.UserFilter{
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "active must be true or false")
		}
		filter.Active = &active
	}

	users, total, err := h.users.List(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Paginated(c, "users", users, response.CalculatePagination(page, perPage, total))
}

// GetUser returns one user's detail
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	userID, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.users.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}
	return response.OK(c, user.PublicView())
}

// UpdateUserStatusRequest flips the active flag
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UpdateUserStatus activates or deactivates an account
func (h *AdminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	userID, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user id")
	}

	var req UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return response.BadRequest(c, "is_active is required")
	}

	user, err := h.users.SetActive(c.Context(), admin, userID, *req.IsActive, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrSelfMutation):
			return response.BadRequest(c, "You cannot change your own status")
		default:
			return response.InternalServerError(c, "Failed to update user status")
		}
	}
	return response.OK(c, user.PublicView())
}

// ForceResetPassword issues a temporary password for a user. The plaintext
// is returned exactly once and never stored.
func (h *AdminHandler) ForceResetPassword(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	userID, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user id")
	}

	tempPassword, err := h.users.ForceResetPassword(c.Context(), admin, userID, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to reset password")
	}

	return response.OK(c, fiber.Map{
		"success":            true,
		"temporary_password": tempPassword,
		"message":            "The user must change this password at next login",
	})
}

// PromoteUser grants admin rights
func (h *AdminHandler) PromoteUser(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	userID, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.users.Promote(c.Context(), admin, userID, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to promote user")
	}
	return response.OK(c, user.PublicView())
}

// UserActivity lists audit entries this user generated as an admin
func (h *AdminHandler) UserActivity(c *fiber.Ctx) error {
	userID, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user id")
	}
	page, perPage := pagination(c)

	logs, total, err := h.users.UserActivity(c.Context(), userID, page, perPage)
	if err != nil {
		return response.InternalServerError(c, "Failed to load activity")
	}
	return response.Paginated(c, "activity", logs, response.CalculatePagination(page, perPage, total))
}
