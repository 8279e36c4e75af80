package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
)

// AnalyticsService computes engagement and usage aggregates for the admin
// panel. All queries are read-only SQL aggregations.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func validateDays(days int) error {
	if days < 1 || days > 365 {
		return fmt.Errorf("days must be between 1 and 365, got %d", days)
	}
	return nil
}

// DayCount is one point of a daily time series
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// TopUser is one row of the most-active-users table
type TopUser struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	QueryCount int64  `json:"query_count"`
}

// UserAnalytics summarizes user engagement over a window
type UserAnalytics struct {
	WindowDays        int        `json:"window_days"`
	TotalUsers        int64      `json:"total_users"`
	ActiveUsers       int64      `json:"active_users"`
	AvgQueriesPerUser float64    `json:"avg_queries_per_user"`
	DailyActiveUsers  []DayCount `json:"daily_active_users"`
	TopUsers          []TopUser  `json:"top_users"`
}

// Users computes engagement metrics over the last 1 to 365 days
func (s *AnalyticsService) Users(ctx context.Context, days int) (*UserAnalytics, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	db := s.db.WithContext(ctx)

	out := &UserAnalytics{WindowDays: days}

	if err := db.Model(&model.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, err
	}

	err := db.Model(&model.ChatSession{}).
		Where("last_activity_at >= ?", cutoff).
		Distinct("user_id").
		Count(&out.ActiveUsers).Error
	if err != nil {
		return nil, err
	}

	var queries int64
	err = db.Model(&model.ChatMessage{}).
		Where("role = ? AND created_at >= ?", model.MessageRoleUser, cutoff).
		Count(&queries).Error
	if err != nil {
		return nil, err
	}
	if out.ActiveUsers > 0 {
		out.AvgQueriesPerUser = float64(queries) / float64(out.ActiveUsers)
	}

	err = db.Raw(`
		SELECT TO_CHAR(DATE_TRUNC('day', last_activity_at), 'YYYY-MM-DD') AS day,
		       COUNT(DISTINCT user_id) AS count
		FROM chat_sessions
		WHERE last_activity_at >= ?
		GROUP BY 1 ORDER BY 1`, cutoff).Scan(&out.DailyActiveUsers).Error
	if err != nil {
		return nil, err
	}

	err = db.Raw(`
		SELECT u.id AS user_id, u.username, COUNT(m.id) AS query_count
		FROM users u
		JOIN chat_sessions s ON s.user_id = u.id
		JOIN chat_messages m ON m.session_id = s.id AND m.role = 'user'
		WHERE m.created_at >= ?
		GROUP BY u.id, u.username
		ORDER BY query_count DESC
		LIMIT 10`, cutoff).Scan(&out.TopUsers).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// SessionAnalytics summarizes conversation behavior over a window
type SessionAnalytics struct {
	WindowDays            int              `json:"window_days"`
	TotalSessions         int64            `json:"total_sessions"`
	AvgDurationMinutes    float64          `json:"avg_session_duration_minutes"`
	AvgMessagesPerSession float64          `json:"avg_messages_per_session"`
	SessionDistribution   map[string]int64 `json:"session_distribution"`
	SessionTrend          []DayCount       `json:"session_trend"`
}

// Sessions computes session metrics over the last 1 to 365 days
func (s *AnalyticsService) Sessions(ctx context.Context, days int) (*SessionAnalytics, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	db := s.db.WithContext(ctx)

	out := &SessionAnalytics{
		WindowDays:          days,
		SessionDistribution: map[string]int64{"1-5": 0, "6-10": 0, "11-20": 0, "21+": 0},
	}

	err := db.Model(&model.ChatSession{}).
		Where("created_at >= ?", cutoff).
		Count(&out.TotalSessions).Error
	if err != nil {
		return nil, err
	}

	var avgMinutes *float64
	err = db.Raw(`
		SELECT AVG(EXTRACT(EPOCH FROM (last_activity_at - created_at)) / 60)
		FROM chat_sessions WHERE created_at >= ?`, cutoff).Scan(&avgMinutes).Error
	if err != nil {
		return nil, err
	}
	if avgMinutes != nil {
		out.AvgDurationMinutes = *avgMinutes
	}

	var messages int64
	err = db.Model(&model.ChatMessage{}).
		Where("created_at >= ?", cutoff).
		Count(&messages).Error
	if err != nil {
		return nil, err
	}
	if out.TotalSessions > 0 {
		out.AvgMessagesPerSession = float64(messages) / float64(out.TotalSessions)
	}

	type bucketRow struct {
		Bucket string
		Count  int64
	}
	var buckets []bucketRow
	err = db.Raw(`
		SELECT CASE
		         WHEN msg_count <= 5 THEN '1-5'
		         WHEN msg_count <= 10 THEN '6-10'
		         WHEN msg_count <= 20 THEN '11-20'
		         ELSE '21+'
		       END AS bucket,
		       COUNT(*) AS count
		FROM (
		  SELECT s.id, COUNT(m.id) AS msg_count
		  FROM chat_sessions s
		  LEFT JOIN chat_messages m ON m.session_id = s.id
		  WHERE s.created_at >= ?
		  GROUP BY s.id
		) counts
		GROUP BY bucket`, cutoff).Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	for _, b := range buckets {
		out.SessionDistribution[b.Bucket] = b.Count
	}

	err = db.Raw(`
		SELECT TO_CHAR(DATE_TRUNC('day', created_at), 'YYYY-MM-DD') AS day,
		       COUNT(*) AS count
		FROM chat_sessions
		WHERE created_at >= ?
		GROUP BY 1 ORDER BY 1`, cutoff).Scan(&out.SessionTrend).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DocumentAnalytics summarizes the knowledge base over a window
type DocumentAnalytics struct {
	WindowDays     int              `json:"window_days"`
	TotalDocuments int64            `json:"total_documents"`
	TotalChunks    int64            `json:"total_chunks"`
	TotalSizeMB    float64          `json:"total_size_mb"`
	ByType         map[string]int64 `json:"documents_by_type"`
	UploadTrend    []DayCount       `json:"upload_trend"`
}

// Documents computes knowledge base metrics over the last 1 to 365 days
func (s *AnalyticsService) Documents(ctx context.Context, days int) (*DocumentAnalytics, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	db := s.db.WithContext(ctx)

	out := &DocumentAnalytics{WindowDays: days, ByType: map[string]int64{}}

	if err := db.Model(&model.Document{}).Count(&out.TotalDocuments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.DocumentChunk{}).Count(&out.TotalChunks).Error; err != nil {
		return nil, err
	}

	var totalBytes int64
	err := db.Model(&model.Document{}).
		Select("COALESCE(SUM(file_size_bytes), 0)").
		Scan(&totalBytes).Error
	if err != nil {
		return nil, err
	}
	out.TotalSizeMB = toMB(totalBytes)

	type typeRow struct {
		FileType string
		Count    int64
	}
	var types []typeRow
	err = db.Model(&model.Document{}).
		Select("file_type, COUNT(*) AS count").
		Group("file_type").
		Scan(&types).Error
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		out.ByType[t.FileType] = t.Count
	}

	err = db.Raw(`
		SELECT TO_CHAR(DATE_TRUNC('day', uploaded_at), 'YYYY-MM-DD') AS day,
		       COUNT(*) AS count
		FROM documents
		WHERE uploaded_at >= ?
		GROUP BY 1 ORDER BY 1`, cutoff).Scan(&out.UploadTrend).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
