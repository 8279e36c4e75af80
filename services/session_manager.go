package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionForbidden = errors.New("session belongs to another user")
	ErrInvalidSessionID = errors.New("session id is not a valid UUID")
)

const sessionLockStripes = 64

// SessionManager owns chat sessions and their messages. Writes to a session
// are serialized through a striped lock so message timestamps stay strictly
// increasing even under concurrent queries (and a non-monotonic wall clock).
type SessionManager struct {
	db    *gorm.DB
	locks [sessionLockStripes]sync.Mutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(db *gorm.DB) *SessionManager {
	return &SessionManager{db: db}
}

func (m *SessionManager) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &m.locks[h.Sum32()%sessionLockStripes]
}

// Create starts a new session for the user and returns its id
func (m *SessionManager) Create(ctx context.Context, userID uint) (string, error) {
	now := time.Now().UTC()
	session := model.ChatSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := m.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", err
	}
	return session.ID, nil
}

// EnsureOwned loads a session and verifies it belongs to the user. A session
// id the caller supplies but the store has never seen is created for them.
func (m *SessionManager) EnsureOwned(ctx context.Context, sessionID string, userID uint) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return ErrInvalidSessionID
	}

	var session model.ChatSession
	err := m.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now().UTC()
			fresh := model.ChatSession{
				ID:             sessionID,
				UserID:         userID,
				CreatedAt:      now,
				LastActivityAt: now,
			}
			return m.db.WithContext(ctx).Create(&fresh).Error
		}
		return err
	}

	if session.UserID != userID {
		return ErrSessionForbidden
	}
	return nil
}

// AppendPair writes a user message and the assistant reply as a pair. The
// assistant timestamp is strictly greater than the user timestamp, and both
// are strictly greater than any message already in the session.
func (m *SessionManager) AppendPair(ctx context.Context, sessionID, userText, assistantText string) error {
	lock := m.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last model.ChatMessage
		lastTS := time.Time{}
		err := tx.Where("session_id = ?", sessionID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			lastTS = last.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		userTS, assistantTS := nextPairTimestamps(lastTS, time.Now().UTC())

		messages := []model.ChatMessage{
			{SessionID: sessionID, Role: model.MessageRoleUser, Content: userText, CreatedAt: userTS},
			{SessionID: sessionID, Role: model.MessageRoleAssistant, Content: assistantText, CreatedAt: assistantTS},
		}
		if err := tx.Create(&messages).Error; err != nil {
			return err
		}

		return tx.Model(&model.ChatSession{}).
			Where("id = ?", sessionID).
			Update("last_activity_at", assistantTS).Error
	})
}

// nextPairTimestamps picks the timestamps for a user/assistant message pair.
// The user message lands at now unless the wall clock has not moved past the
// last persisted message, in which case it is clamped one microsecond after
// it. The assistant message is always one microsecond after the user's.
func nextPairTimestamps(last, now time.Time) (userTS, assistantTS time.Time) {
	userTS = now
	if !userTS.After(last) {
		userTS = last.Add(time.Microsecond)
	}
	return userTS, userTS.Add(time.Microsecond)
}

// History returns up to n most recent messages, oldest first. Older messages
// are retained in the store but not returned.
func (m *SessionManager) History(ctx context.Context, sessionID string, n int) ([]model.ChatMessage, error) {
	if n <= 0 {
		return nil, nil
	}

	var messages []model.ChatMessage
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(n).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// reverse into oldest-first order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Touch bumps the session's last activity timestamp
func (m *SessionManager) Touch(ctx context.Context, sessionID string) error {
	return m.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", sessionID).
		Update("last_activity_at", time.Now().UTC()).Error
}

// EvictInactive deletes sessions idle longer than the window, together with
// their messages, and returns how many sessions were removed.
func (m *SessionManager) EvictInactive(ctx context.Context, window time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-window)

	var evicted int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []string
		if err := tx.Model(&model.ChatSession{}).
			Where("last_activity_at < ?", cutoff).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		if err := tx.Where("session_id IN ?", stale).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", stale).Delete(&model.ChatSession{})
		if result.Error != nil {
			return result.Error
		}
		evicted = result.RowsAffected
		return nil
	})
	return evicted, err
}
