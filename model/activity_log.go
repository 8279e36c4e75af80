package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity action types emitted by the admin surface
const (
	ActionUserStatusUpdate = "user_status_update"
	ActionPasswordReset    = "password_reset"
	ActionUserPromotion    = "user_promotion"
	ActionDocumentDelete   = "document_delete"
	ActionConfigUpdate     = "config_update"
)

// ActivityResult records whether the audited mutation committed
type ActivityResult string

const (
	ActivityResultSuccess ActivityResult = "success"
	ActivityResultFailure ActivityResult = "failure"
)

// ActivityLog is the append-only audit trail of admin actions. An entry is
// written in the same transaction as the mutation it describes, so it is
// visible exactly when the mutation committed.
type ActivityLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AdminID       uint           `gorm:"not null;index" json:"admin_id"`
	AdminUsername string         `gorm:"type:varchar(30);not null" json:"admin_username"`
	Action        string         `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType  string         `gorm:"type:varchar(30);not null;index" json:"resource_type"`
	ResourceID    string         `gorm:"type:varchar(64);index" json:"resource_id"`
	Details       datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	ClientAddr    string         `gorm:"type:varchar(45)" json:"client_addr,omitempty"`
	Result        ActivityResult `gorm:"type:varchar(10);not null" json:"result"`
	CreatedAt     time.Time      `gorm:"index" json:"timestamp"`

	// Relationships
	Admin User `gorm:"foreignKey:AdminID" json:"-"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_logs"
}
