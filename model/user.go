package model

import (
	"time"
)

// User represents a registered user in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null;type:varchar(30)" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string    `gorm:"type:varchar(100)" json:"full_name,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	MustReset    bool      `gorm:"default:false" json:"must_reset"`

	LastLoginAt *time.Time `json:"last_login,omitempty"`

	// Pending password reset. Both fields are cleared together on a
	// successful reset so a token can be redeemed at most once.
	ResetToken         string     `gorm:"type:varchar(512)" json:"-"`
	ResetTokenIssuedAt *time.Time `json:"-"`

	// Relationships
	ChatSessions []ChatSession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ActivityLogs []ActivityLog `gorm:"foreignKey:AdminID" json:"-"`
}

// UserView is the externally visible shape of a user account
type UserView struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	IsAdmin   bool       `json:"is_admin"`
	MustReset bool       `json:"must_reset"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// PublicView strips credential material for API responses
func (u *User) PublicView() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		MustReset: u.MustReset,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLoginAt,
	}
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
