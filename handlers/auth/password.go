package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/middleware"
	"github.com/finassist/finchat-api/utils/response"
	"github.com/finassist/finchat-api/utils/validation"
)

// ChangePasswordRequest carries a self-service password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword handles an authenticated password change
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if ok, errs := validation.ValidatePassword(req.NewPassword); !ok {
		return response.BadRequest(c, strings.Join(errs, "; "))
	}

	if err := h.service.ChangePassword(c.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.BadRequest(c, "Current password is incorrect")
		}
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.OK(c, fiber.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}

// ForgotPasswordRequest starts the reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword mints a reset token for a known email. The response is the
// same whether or not the email exists; the token is included only in debug
// mode where no delivery channel is wired.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	email := strings.ToLower(validation.SanitizeString(req.Email))
	if !validation.ValidateEmail(email) {
		return response.BadRequest(c, "Invalid email format")
	}

	token, err := h.service.ForgotPassword(c.Context(), email)
	if err != nil {
		return response.InternalServerError(c, "Failed to process request")
	}

	body := fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	}
	if h.debugMode() && token != "" {
		body["reset_token"] = token
	}
	return response.OK(c, body)
}

// ResetPasswordRequest completes the reset flow
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword redeems a single-use reset token
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Token == "" {
		return response.BadRequest(c, "Reset token is required")
	}
	if ok, errs := validation.ValidatePassword(req.NewPassword); !ok {
		return response.BadRequest(c, strings.Join(errs, "; "))
	}

	if err := h.service.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			return response.BadRequest(c, "Invalid or expired reset token")
		}
		return response.InternalServerError(c, "Failed to reset password")
	}

	return response.OK(c, fiber.Map{
		"success": true,
		"message": "Password has been reset",
	})
}
