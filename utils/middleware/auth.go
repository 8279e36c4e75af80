package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/utils/auth"
	"github.com/finassist/finchat-api/utils/response"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		db:         db,
	}
}

// authenticate runs the full verification chain: bearer format, signature,
// expiry, token type, subject resolves to a user, user is active.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.User, *auth.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, response.Unauthorized(c, "Missing authorization token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, response.Unauthorized(c, "Invalid authorization format")
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, nil, response.Unauthorized(c, "Token has expired")
		}
		return nil, nil, response.Unauthorized(c, "Invalid token")
	}

	if claims.TokenType != auth.TokenTypeAccess {
		return nil, nil, response.Unauthorized(c, "Invalid token type")
	}

	var user model.User
	if err := m.db.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, response.Unauthorized(c, "User not found")
		}
		return nil, nil, response.InternalServerError(c, "Failed to load user")
	}

	if !user.IsActive {
		return nil, nil, response.Forbidden(c, "Account is deactivated")
	}

	if mustResetBlocked(&user, c.Path()) {
		return nil, nil, response.Forbidden(c, "Password change required before continuing")
	}

	return &user, claims, nil
}

// passwordChangePath is the only route reachable while a forced password
// reset is pending.
const passwordChangePath = "/api/v1/auth/change-password"

// mustResetBlocked reports whether the user is locked out of the path by a
// pending forced password reset.
func mustResetBlocked(user *model.User, path string) bool {
	return user.MustReset && path != passwordChangePath
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, failResp := m.authenticate(c)
		if user == nil {
			return failResp
		}

		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("user", user)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequireAdmin is middleware that requires a valid JWT token belonging to
// an admin account
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, failResp := m.authenticate(c)
		if user == nil {
			return failResp
		}

		if !user.IsAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("user", user)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}
