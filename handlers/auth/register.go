package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/response"
	"github.com/finassist/finchat-api/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=100"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Username = validation.SanitizeString(req.Username)
	req.Email = strings.ToLower(validation.SanitizeString(req.Email))
	req.FullName = validation.SanitizeString(req.FullName)

	if ok, msg := validation.ValidateUsername(req.Username); !ok {
		return response.BadRequest(c, msg)
	}
	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}
	if ok, errs := validation.ValidatePassword(req.Password); !ok {
		return response.BadRequest(c, strings.Join(errs, "; "))
	}

	user, err := h.service.Register(c.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return response.Conflict(c, "Username or email already registered")
		}
		return response.InternalServerError(c, "Failed to create account")
	}

	return response.Created(c, user.PublicView())
}
