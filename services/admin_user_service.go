package services

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/utils/auth"
)

var ErrSelfMutation = errors.New("admins cannot modify their own account this way")

// AdminUserService implements the admin user lifecycle. Every mutation
// commits together with its audit entry or not at all.
type AdminUserService struct {
	db       *gorm.DB
	activity *ActivityLogger
}

// NewAdminUserService creates a new admin user service
func NewAdminUserService(db *gorm.DB, activity *ActivityLogger) *AdminUserService {
	return &AdminUserService{db: db, activity: activity}
}

// UserFilter narrows a user listing
type UserFilter struct {
	Search  string
	Active  *bool
	Page    int
	PerPage int
}

// List returns users with pagination and filtering
func (s *AdminUserService) List(ctx context.Context, filter UserFilter) ([]model.UserView, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}

	var users []model.User
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.PublicView())
	}
	return views, total, nil
}

// Get returns one user by id
func (s *AdminUserService) Get(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetActive flips a user's active flag, auditing the change atomically
func (s *AdminUserService) SetActive(ctx context.Context, admin *model.User, userID uint, active bool, clientAddr string) (*model.User, error) {
	if admin.ID == userID {
		return nil, ErrSelfMutation
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("is_active", active).Error; err != nil {
			return err
		}
		return s.activity.LogTx(tx, ActivityEntry{
			Admin:        admin,
			Action:       model.ActionUserStatusUpdate,
			ResourceType: "user",
			ResourceID:   strconv.FormatUint(uint64(userID), 10),
			Details: map[string]interface{}{
				"username":  user.Username,
				"is_active": active,
			},
			ClientAddr: clientAddr,
			Result:     model.ActivityResultSuccess,
		})
	})
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	return user, nil
}

// ForceResetPassword generates a temporary password for the user, marks the
// account must-reset and audits the action. The temporary password is
// returned exactly once and never stored in plaintext.
func (s *AdminUserService) ForceResetPassword(ctx context.Context, admin *model.User, userID uint, clientAddr string) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"password_hash":         hash,
			"must_reset":            true,
			"reset_token":           nil,
			"reset_token_issued_at": nil,
		}).Error; err != nil {
			return err
		}
		return s.activity.LogTx(tx, ActivityEntry{
			Admin:        admin,
			Action:       model.ActionPasswordReset,
			ResourceType: "user",
			ResourceID:   strconv.FormatUint(uint64(userID), 10),
			Details: map[string]interface{}{
				"username": user.Username,
			},
			ClientAddr: clientAddr,
			Result:     model.ActivityResultSuccess,
		})
	})
	if err != nil {
		return "", err
	}
	return tempPassword, nil
}

// Promote grants admin rights to a user, auditing the change atomically
func (s *AdminUserService) Promote(ctx context.Context, admin *model.User, userID uint, clientAddr string) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return user, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("is_admin", true).Error; err != nil {
			return err
		}
		return s.activity.LogTx(tx, ActivityEntry{
			Admin:        admin,
			Action:       model.ActionUserPromotion,
			ResourceType: "user",
			ResourceID:   strconv.FormatUint(uint64(userID), 10),
			Details: map[string]interface{}{
				"username": user.Username,
			},
			ClientAddr: clientAddr,
			Result:     model.ActivityResultSuccess,
		})
	})
	if err != nil {
		return nil, err
	}

	user.IsAdmin = true
	return user, nil
}

// UserActivity returns audit entries where this user was the admin actor
func (s *AdminUserService) UserActivity(ctx context.Context, userID uint, page, perPage int) ([]model.ActivityLog, int64, error) {
	return s.activity.List(ActivityFilter{AdminID: userID, Page: page, PerPage: perPage})
}
