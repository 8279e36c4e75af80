package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        model.UserView `json:"user"`
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	token, user, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "Account is deactivated")
		default:
			return response.InternalServerError(c, "Login failed")
		}
	}

	return response.OK(c, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user.PublicView(),
	})
}
