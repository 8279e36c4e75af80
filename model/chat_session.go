package model

import (
	"time"
)

// ChatSession represents a conversation thread owned by a single user.
// The primary key is a random UUID so ids are not guessable across tenants.
type ChatSession struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"session_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `gorm:"index" json:"last_activity"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName specifies the table name for ChatSession
func (ChatSession) TableName() string {
	return "chat_sessions"
}
