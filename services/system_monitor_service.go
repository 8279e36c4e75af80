package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/utils/cache"
)

// Component health states
const (
	StatusHealthy       = "healthy"
	StatusDegraded      = "degraded"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not_configured"
)

// HealthStatus reports per-component and overall health
type HealthStatus struct {
	Status       string            `json:"status"`
	Components   map[string]string `json:"components"`
	ErrorDetails map[string]string `json:"error_details,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Healthy reports whether the service can serve queries
func (h *HealthStatus) Healthy() bool {
	return h.Status != StatusUnhealthy
}

// SystemMonitorService surfaces health, storage and API usage for the admin
// panel.
type SystemMonitorService struct {
	db      *gorm.DB
	vectors *VectorStore
	redis   *cache.RedisCache // nil when Redis is not configured
}

// NewSystemMonitorService creates a new monitor service
func NewSystemMonitorService(db *gorm.DB, vectors *VectorStore, redis *cache.RedisCache) *SystemMonitorService {
	return &SystemMonitorService{db: db, vectors: vectors, redis: redis}
}

// Health probes each component. The overall status degrades with one failed
// component and is unhealthy with more than one, or when the database itself
// is down.
func (s *SystemMonitorService) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Components:   map[string]string{},
		ErrorDetails: map[string]string{},
		Timestamp:    time.Now().UTC(),
	}

	unhealthy := 0

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status.Components["database"] = StatusUnhealthy
		status.ErrorDetails["database"] = err.Error()
		unhealthy += 2 // nothing works without the record store
	} else {
		status.Components["database"] = StatusHealthy
	}

	if _, err := s.vectors.IsEmpty(ctx); err != nil {
		status.Components["vector_index"] = StatusUnhealthy
		status.ErrorDetails["vector_index"] = err.Error()
		unhealthy++
	} else {
		status.Components["vector_index"] = StatusHealthy
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			status.Components["cache"] = StatusUnhealthy
			status.ErrorDetails["cache"] = err.Error()
			unhealthy++
		} else {
			status.Components["cache"] = StatusHealthy
		}
	} else {
		status.Components["cache"] = StatusNotConfigured
	}

	switch {
	case unhealthy == 0:
		status.Status = StatusHealthy
	case unhealthy == 1:
		status.Status = StatusDegraded
	default:
		status.Status = StatusUnhealthy
	}

	if len(status.ErrorDetails) == 0 {
		status.ErrorDetails = nil
	}
	return status
}

// SystemMetrics summarizes the record store contents
type SystemMetrics struct {
	TotalUsers     int64     `json:"total_users"`
	ActiveUsers    int64     `json:"active_users"`
	TotalSessions  int64     `json:"total_sessions"`
	TotalMessages  int64     `json:"total_messages"`
	TotalDocuments int64     `json:"total_documents"`
	TotalChunks    int64     `json:"total_chunks"`
	Timestamp      time.Time `json:"timestamp"`
}

// Metrics returns entity counts across the store
func (s *SystemMonitorService) Metrics(ctx context.Context) (*SystemMetrics, error) {
	m := &SystemMetrics{Timestamp: time.Now().UTC()}
	db := s.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&m.TotalUsers, db.Model(&model.User{})},
		{&m.ActiveUsers, db.Model(&model.User{}).Where("is_active = ?", true)},
		{&m.TotalSessions, db.Model(&model.ChatSession{})},
		{&m.TotalMessages, db.Model(&model.ChatMessage{})},
		{&m.TotalDocuments, db.Model(&model.Document{})},
		{&m.TotalChunks, db.Model(&model.DocumentChunk{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StorageMetrics reports database and document storage usage
type StorageMetrics struct {
	DatabaseSizeMB     float64 `json:"database_size_mb"`
	ChunkTableSizeMB   float64 `json:"chunk_table_size_mb"`
	TotalDocumentMB    float64 `json:"total_document_size_mb"`
	MessageTableSizeMB float64 `json:"message_table_size_mb"`
}

// Storage measures table and database sizes via Postgres catalogs
func (s *SystemMonitorService) Storage(ctx context.Context) (*StorageMetrics, error) {
	m := &StorageMetrics{}
	db := s.db.WithContext(ctx)

	var dbSize int64
	if err := db.Raw("SELECT pg_database_size(current_database())").Scan(&dbSize).Error; err != nil {
		return nil, err
	}
	m.DatabaseSizeMB = toMB(dbSize)

	var chunkSize int64
	if err := db.Raw("SELECT pg_total_relation_size('document_chunks')").Scan(&chunkSize).Error; err != nil {
		return nil, err
	}
	m.ChunkTableSizeMB = toMB(chunkSize)

	var msgSize int64
	if err := db.Raw("SELECT pg_total_relation_size('chat_messages')").Scan(&msgSize).Error; err != nil {
		return nil, err
	}
	m.MessageTableSizeMB = toMB(msgSize)

	var docBytes int64
	if err := db.Model(&model.Document{}).
		Select("COALESCE(SUM(file_size_bytes), 0)").
		Scan(&docBytes).Error; err != nil {
		return nil, err
	}
	m.TotalDocumentMB = toMB(docBytes)

	return m, nil
}

func toMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

// EndpointUsage aggregates metrics for one endpoint
type EndpointUsage struct {
	Endpoint      string  `json:"endpoint"`
	Requests      int64   `json:"requests"`
	ErrorCount    int64   `json:"error_count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// APIUsage summarizes request traffic over a time window
type APIUsage struct {
	WindowHours   int               `json:"window_hours"`
	TotalRequests int64             `json:"total_requests"`
	SuccessCount  int64             `json:"success_count"`
	ErrorCount    int64             `json:"error_count"`
	HourlyRate    float64           `json:"hourly_rate"`
	Endpoints     []EndpointUsage   `json:"endpoints"`
	Slowest       []model.APIMetric `json:"slowest_requests"`
}

// Usage aggregates API metrics over the last 1 to 168 hours
func (s *SystemMonitorService) Usage(ctx context.Context, hours int) (*APIUsage, error) {
	if hours < 1 || hours > 168 {
		return nil, fmt.Errorf("hours must be between 1 and 168, got %d", hours)
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	db := s.db.WithContext(ctx).Model(&model.APIMetric{}).Where("created_at >= ?", since)

	usage := &APIUsage{WindowHours: hours}

	if err := db.Session(&gorm.Session{}).Count(&usage.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("status_code < 400").Count(&usage.SuccessCount).Error; err != nil {
		return nil, err
	}
	usage.ErrorCount = usage.TotalRequests - usage.SuccessCount
	usage.HourlyRate = float64(usage.TotalRequests) / float64(hours)

	err := db.Session(&gorm.Session{}).
		Select("endpoint, COUNT(*) AS requests, COUNT(*) FILTER (WHERE status_code >= 400) AS error_count, AVG(duration_ms) AS avg_duration_ms").
		Group("endpoint").
		Order("requests DESC").
		Scan(&usage.Endpoints).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&model.APIMetric{}).
		Where("created_at >= ?", since).
		Order("duration_ms DESC").
		Limit(5).
		Find(&usage.Slowest).Error
	if err != nil {
		return nil, err
	}

	return usage, nil
}

// LogEntry is one request sample rendered with a derived severity
type LogEntry struct {
	Severity   string    `json:"severity"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func severityFor(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "ERROR"
	case statusCode >= 400:
		return "WARNING"
	default:
		return "INFO"
	}
}

// Logs returns request samples filtered by severity and date range, newest
// first. Severity maps from status code: 5xx ERROR, 4xx WARNING, else INFO.
func (s *SystemMonitorService) Logs(ctx context.Context, severity string, from, to *time.Time, limit int) ([]LogEntry, error) {
	query := s.db.WithContext(ctx).Model(&model.APIMetric{})

	switch severity {
	case "ERROR":
		query = query.Where("status_code >= 500")
	case "WARNING":
		query = query.Where("status_code >= 400 AND status_code < 500")
	case "INFO":
		query = query.Where("status_code < 400")
	case "":
	default:
		return nil, fmt.Errorf("unknown severity %q", severity)
	}

	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	var rows []model.APIMetric
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, LogEntry{
			Severity:   severityFor(r.StatusCode),
			Endpoint:   r.Endpoint,
			Method:     r.Method,
			StatusCode: r.StatusCode,
			DurationMS: r.DurationMS,
			Error:      r.Error,
			Timestamp:  r.CreatedAt,
		})
	}
	return entries, nil
}

// PruneMetrics deletes request samples older than the retention window
func (s *SystemMonitorService) PruneMetrics(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.APIMetric{})
	return result.RowsAffected, result.Error
}
