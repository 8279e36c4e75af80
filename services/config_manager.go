package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
)

var (
	ErrSettingNotFound = errors.New("config setting not found")
	ErrInvalidSetting  = errors.New("invalid config value")
)

// ConfigSnapshot is an immutable view of the runtime settings. Handlers and
// services read a snapshot at the start of an operation, so one request sees
// one consistent set of values.
type ConfigSnapshot struct {
	ChunkSize                   int
	ChunkOverlap                int
	TopKChunks                  int
	SimilarityThreshold         float64
	MaxConversationTurns        int
	MaxFileSizeMB               int
	GeminiTemperature           float64
	GeminiMaxTokens             int
	GeminiChatModel             string
	GeminiEmbeddingModel        string
	JWTAccessTokenExpireMinutes int
	SessionInactiveDays         int
	MetricsRetentionDays        int
}

// MaxFileSizeBytes returns the upload limit in bytes (decimal megabytes)
func (s ConfigSnapshot) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1_000_000
}

// AccessTokenLifetime returns the configured access token duration
func (s ConfigSnapshot) AccessTokenLifetime() time.Duration {
	return time.Duration(s.JWTAccessTokenExpireMinutes) * time.Minute
}

// SessionIdleWindow returns how long a session may sit idle before eviction
func (s ConfigSnapshot) SessionIdleWindow() time.Duration {
	return time.Duration(s.SessionInactiveDays) * 24 * time.Hour
}

// MetricsRetention returns how long API metric samples are kept
func (s ConfigSnapshot) MetricsRetention() time.Duration {
	return time.Duration(s.MetricsRetentionDays) * 24 * time.Hour
}

// ConfigManager loads settings from the system_config table and serves them
// as snapshots. Updates are validated against the setting's declared type and
// bounds, audited, and applied to the live snapshot on commit.
type ConfigManager struct {
	db       *gorm.DB
	activity *ActivityLogger

	mu   sync.RWMutex
	snap ConfigSnapshot
}

// NewConfigManager creates a config manager and loads the initial snapshot
func NewConfigManager(db *gorm.DB, activity *ActivityLogger) (*ConfigManager, error) {
	m := &ConfigManager{db: db, activity: activity}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshot returns the current settings view
func (m *ConfigManager) Snapshot() ConfigSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Reload rebuilds the snapshot from the database
func (m *ConfigManager) Reload() error {
	var settings []model.ConfigSetting
	if err := m.db.Find(&settings).Error; err != nil {
		return err
	}

	snap := ConfigSnapshot{}
	for _, s := range settings {
		switch s.Name {
		case "chunk_size":
			snap.ChunkSize = parseIntOr(s.Value, 800)
		case "chunk_overlap":
			snap.ChunkOverlap = parseIntOr(s.Value, 100)
		case "top_k_chunks":
			snap.TopKChunks = parseIntOr(s.Value, 5)
		case "similarity_threshold":
			snap.SimilarityThreshold = parseFloatOr(s.Value, 0.7)
		case "max_conversation_turns":
			snap.MaxConversationTurns = parseIntOr(s.Value, 20)
		case "max_file_size_mb":
			snap.MaxFileSizeMB = parseIntOr(s.Value, 10)
		case "gemini_temperature":
			snap.GeminiTemperature = parseFloatOr(s.Value, 0.7)
		case "gemini_max_tokens":
			snap.GeminiMaxTokens = parseIntOr(s.Value, 500)
		case "gemini_chat_model":
			snap.GeminiChatModel = s.Value
		case "gemini_embedding_model":
			snap.GeminiEmbeddingModel = s.Value
		case "jwt_access_token_expire_minutes":
			snap.JWTAccessTokenExpireMinutes = parseIntOr(s.Value, 30)
		case "session_inactive_days":
			snap.SessionInactiveDays = parseIntOr(s.Value, 30)
		case "metrics_retention_days":
			snap.MetricsRetentionDays = parseIntOr(s.Value, 30)
		}
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
	return nil
}

func parseIntOr(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloatOr(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// List returns all settings grouped by name order
func (m *ConfigManager) List() ([]model.ConfigSetting, error) {
	var settings []model.ConfigSetting
	err := m.db.Order("category, name").Find(&settings).Error
	return settings, err
}

// Get returns one setting by name
func (m *ConfigManager) Get(name string) (*model.ConfigSetting, error) {
	var setting model.ConfigSetting
	if err := m.db.Where("name = ?", name).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// ValidateValue checks a raw value against the setting's declared type and
// bounds, returning the normalized string form to store.
func ValidateValue(setting *model.ConfigSetting, raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	switch setting.DataType {
	case model.SettingTypeInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be an integer", ErrInvalidSetting, setting.Name)
		}
		if setting.MinValue != nil && float64(n) < *setting.MinValue {
			return "", fmt.Errorf("%w: %s must be >= %g", ErrInvalidSetting, setting.Name, *setting.MinValue)
		}
		if setting.MaxValue != nil && float64(n) > *setting.MaxValue {
			return "", fmt.Errorf("%w: %s must be <= %g", ErrInvalidSetting, setting.Name, *setting.MaxValue)
		}
		return strconv.Itoa(n), nil

	case model.SettingTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be a number", ErrInvalidSetting, setting.Name)
		}
		if setting.MinValue != nil && f < *setting.MinValue {
			return "", fmt.Errorf("%w: %s must be >= %g", ErrInvalidSetting, setting.Name, *setting.MinValue)
		}
		if setting.MaxValue != nil && f > *setting.MaxValue {
			return "", fmt.Errorf("%w: %s must be <= %g", ErrInvalidSetting, setting.Name, *setting.MaxValue)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case model.SettingTypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be true or false", ErrInvalidSetting, setting.Name)
		}
		return strconv.FormatBool(b), nil

	case model.SettingTypeString:
		if raw == "" {
			return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidSetting, setting.Name)
		}
		if setting.MaxLength != nil && len(raw) > *setting.MaxLength {
			return "", fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidSetting, setting.Name, *setting.MaxLength)
		}
		return raw, nil

	default:
		return "", fmt.Errorf("%w: %s has unknown type %q", ErrInvalidSetting, setting.Name, setting.DataType)
	}
}

// Update validates and applies a new value, auditing the change in the same
// transaction. The live snapshot is refreshed after commit.
func (m *ConfigManager) Update(name, raw string, admin *model.User, clientAddr string) (*model.ConfigSetting, error) {
	setting, err := m.Get(name)
	if err != nil {
		return nil, err
	}

	normalized, err := ValidateValue(setting, raw)
	if err != nil {
		return nil, err
	}

	oldValue := setting.Value

	err = m.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&model.ConfigSetting{}).Where("name = ?", name).Updates(map[string]interface{}{
			"value":      normalized,
			"updated_at": now,
			"updated_by": admin.Username,
		}).Error; err != nil {
			return err
		}

		return m.activity.LogTx(tx, ActivityEntry{
			Admin:        admin,
			Action:       model.ActionConfigUpdate,
			ResourceType: "config_setting",
			ResourceID:   name,
			Details: map[string]interface{}{
				"old_value": oldValue,
				"new_value": normalized,
			},
			ClientAddr: clientAddr,
			Result:     model.ActivityResultSuccess,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m.Get(name)
}

// ResetToDefault restores a setting to its seeded default value
func (m *ConfigManager) ResetToDefault(name string, admin *model.User, clientAddr string) (*model.ConfigSetting, error) {
	setting, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return m.Update(name, setting.DefaultValue, admin, clientAddr)
}
