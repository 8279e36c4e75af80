package model

import (
	"time"
)

// MessageRole represents the role of the message sender
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single message in a session. Messages are append-only and
// written in user/assistant pairs; CreatedAt is strictly increasing within a
// session (microsecond precision).
type ChatMessage struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	SessionID string      `gorm:"not null;index;type:varchar(36)" json:"session_id"`
	Role      MessageRole `gorm:"type:varchar(20);not null" json:"role"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`

	// Relationships
	Session ChatSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}
