package auth

import (
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/config"
	"github.com/finassist/finchat-api/services"
)

// AuthHandler serves the authentication endpoints
type AuthHandler struct {
	db      *gorm.DB
	service *services.AuthService
	env     *config.EnvironmentVariable
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, service *services.AuthService, env *config.EnvironmentVariable) *AuthHandler {
	return &AuthHandler{db: db, service: service, env: env}
}

func (h *AuthHandler) debugMode() bool {
	return h.env.GO_ENV == "" || h.env.GO_ENV == "development"
}
