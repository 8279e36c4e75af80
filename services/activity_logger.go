package services

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
)

// ActivityLogger writes the admin audit trail. Entries for mutations are
// written inside the mutation's own transaction via LogTx, so an audit row
// exists exactly when the change it describes committed.
type ActivityLogger struct {
	db *gorm.DB
}

// NewActivityLogger creates a new activity logger
func NewActivityLogger(db *gorm.DB) *ActivityLogger {
	return &ActivityLogger{db: db}
}

// ActivityEntry describes one admin action to record
type ActivityEntry struct {
	Admin        *model.User
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	ClientAddr   string
	Result       model.ActivityResult
}

func buildLog(entry ActivityEntry) (*model.ActivityLog, error) {
	var details datatypes.JSON
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, err
		}
		details = datatypes.JSON(raw)
	}

	return &model.ActivityLog{
		AdminID:       entry.Admin.ID,
		AdminUsername: entry.Admin.Username,
		Action:        entry.Action,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		Details:       details,
		ClientAddr:    entry.ClientAddr,
		Result:        entry.Result,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// LogTx records an entry within the caller's transaction
func (a *ActivityLogger) LogTx(tx *gorm.DB, entry ActivityEntry) error {
	logRow, err := buildLog(entry)
	if err != nil {
		return err
	}
	return tx.Create(logRow).Error
}

// Log records an entry outside any mutation, such as a failed attempt
func (a *ActivityLogger) Log(entry ActivityEntry) error {
	return a.LogTx(a.db, entry)
}

// ActivityFilter narrows a log listing
type ActivityFilter struct {
	Action  string
	AdminID uint
	Page    int
	PerPage int
}

// List returns audit entries newest first
func (a *ActivityLogger) List(filter ActivityFilter) ([]model.ActivityLog, int64, error) {
	query := a.db.Model(&model.ActivityLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
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

	var logs []model.ActivityLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error
	return logs, total, err
}
