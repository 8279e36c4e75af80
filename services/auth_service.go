package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/utils/auth"
)

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// AuthService implements registration, login and the password lifecycle
type AuthService struct {
	db     *gorm.DB
	jwt    *auth.JWTManager
	config *ConfigManager
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, jwt *auth.JWTManager, config *ConfigManager) *AuthService {
	return &AuthService{db: db, jwt: jwt, config: config}
}

// Register creates a new user account. Username and email are unique.
func (s *AuthService) Register(ctx context.Context, username, email, password, fullName string) (*model.User, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and mints an access token. The token lifetime
// comes from runtime config, so admin changes apply to the next login.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return "", nil, err
	}
	user.LastLoginAt = &now

	token, err := s.jwt.GenerateAccessToken(user.Username, s.config.Snapshot().AccessTokenLifetime())
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// ChangePassword verifies the old password and stores a new hash. A pending
// must-reset flag is cleared by a successful change.
func (s *AuthService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	if !auth.VerifyPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_hash": hash,
		"must_reset":    false,
	}).Error
}

// ForgotPassword mints a reset token for the account behind the email, if
// any. The empty return for an unknown email is indistinguishable from the
// caller's side; the token surfaces only through the delivery channel (or
// the debug response).
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := s.jwt.GenerateResetToken(user.Username)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token":           token,
		"reset_token_issued_at": now,
	}).Error
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token: the password hash is replaced and
// both reset fields are cleared in one update, so the token is single-use.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwt.ValidateResetToken(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	var user model.User
	err = s.db.WithContext(ctx).
		Where("username = ? AND reset_token = ?", claims.Subject, token).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":         hash,
		"must_reset":            false,
		"reset_token":           nil,
		"reset_token_issued_at": nil,
	}).Error
}
