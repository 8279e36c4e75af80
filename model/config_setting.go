package model

import (
	"time"
)

// SettingType enumerates the value types a config setting can hold
type SettingType string

const (
	SettingTypeInt    SettingType = "int"
	SettingTypeFloat  SettingType = "float"
	SettingTypeString SettingType = "string"
	SettingTypeBool   SettingType = "bool"
)

// ConfigSetting is a runtime-tunable system setting. Value and DefaultValue
// are stored as strings and interpreted through DataType; numeric settings
// may carry Min/Max bounds, string settings a MaxLength. Updates are
// validated against these constraints before they persist.
type ConfigSetting struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	Name         string      `gorm:"uniqueIndex;not null;type:varchar(64)" json:"name"`
	Value        string      `gorm:"type:text;not null" json:"value"`
	DefaultValue string      `gorm:"type:text;not null" json:"default_value"`
	DataType     SettingType `gorm:"type:varchar(10);not null" json:"data_type"`
	MinValue     *float64    `json:"min,omitempty"`
	MaxValue     *float64    `json:"max,omitempty"`
	MaxLength    *int        `json:"max_length,omitempty"`
	Category     string      `gorm:"type:varchar(30);index" json:"category"`
	Description  string      `gorm:"type:text" json:"description"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty"`
	UpdatedBy    string      `gorm:"type:varchar(30)" json:"updated_by,omitempty"`
}

// TableName specifies the table name for ConfigSetting
func (ConfigSetting) TableName() string {
	return "system_config"
}
