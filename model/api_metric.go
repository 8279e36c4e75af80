package model

import (
	"time"
)

// APIMetric is one request sample recorded by the metrics middleware.
// Append-only; a retention job trims rows past the configured window.
type APIMetric struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Endpoint   string    `gorm:"type:varchar(128);not null;index" json:"endpoint"`
	Method     string    `gorm:"type:varchar(10);not null" json:"method"`
	StatusCode int       `gorm:"not null;index" json:"status_code"`
	DurationMS int64     `gorm:"not null" json:"duration_ms"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"timestamp"`
}

// TableName specifies the table name for APIMetric
func (APIMetric) TableName() string {
	return "api_metrics"
}
