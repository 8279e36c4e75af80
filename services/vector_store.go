package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/utils/cache"
)

const (
	emptyHintKey = "vector:index_empty"
	emptyHintTTL = 30 * time.Second
)

// SearchHit is one retrieval result
type SearchHit struct {
	ChunkID  string
	Text     string
	Metadata model.ChunkMetadata
	Score    float64
}

// VectorStore persists chunk embeddings in Postgres and serves cosine
// similarity search over them. The is-empty answer is cached for a short TTL
// and invalidated on every write.
type VectorStore struct {
	db    *gorm.DB
	hints cache.HintCache
}

// NewVectorStore creates a vector store over the given database
func NewVectorStore(db *gorm.DB, hints cache.HintCache) *VectorStore {
	if hints == nil {
		hints = cache.NewMemoryHintCache()
	}
	return &VectorStore{db: db, hints: hints}
}

// Upsert writes a chunk batch in one transaction
func (v *VectorStore) Upsert(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&chunks).Error
	})
	if err != nil {
		return err
	}
	v.hints.Invalidate(ctx, emptyHintKey)
	return nil
}

type searchRow struct {
	ID       string
	Text     string
	Metadata []byte
	Score    float64
}

// Search returns up to k chunks with cosine similarity >= minScore, ordered
// by score descending with ties broken by chunk id. k is an upper bound.
func (v *VectorStore) Search(ctx context.Context, vector []float32, k int, minScore float64) ([]SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}

	qv := pgvector.NewVector(vector)

	var rows []searchRow
	err := v.db.WithContext(ctx).Raw(`
		SELECT id, text, metadata, 1 - (embedding <=> ?) AS score
		FROM document_chunks
		WHERE 1 - (embedding <=> ?) >= ?
		ORDER BY score DESC, id ASC
		LIMIT ?`,
		qv, qv, minScore, k,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(rows))
	for _, row := range rows {
		var meta model.ChunkMetadata
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &meta); err != nil {
				return nil, err
			}
		}
		hits = append(hits, SearchHit{
			ChunkID:  row.ID,
			Text:     row.Text,
			Metadata: meta,
			Score:    row.Score,
		})
	}
	return hits, nil
}

// DeleteByDocument removes all chunks of a document and returns the count
func (v *VectorStore) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	result := v.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.DocumentChunk{})
	if result.Error != nil {
		return 0, result.Error
	}
	v.hints.Invalidate(ctx, emptyHintKey)
	return result.RowsAffected, nil
}

// IndexStats summarizes the vector index contents
type IndexStats struct {
	TotalChunks    int64            `json:"total_chunks"`
	TotalDocuments int64            `json:"total_documents"`
	ChunksByType   map[string]int64 `json:"chunks_by_type"`
	RecentUploads  map[string]int64 `json:"recent_uploads"`
}

// Stats computes index totals, per-type chunk counts and a 7-day upload
// histogram keyed by date.
func (v *VectorStore) Stats(ctx context.Context) (*IndexStats, error) {
	stats := &IndexStats{
		ChunksByType:  map[string]int64{},
		RecentUploads: map[string]int64{},
	}

	db := v.db.WithContext(ctx)

	if err := db.Model(&model.DocumentChunk{}).Count(&stats.TotalChunks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Document{}).Count(&stats.TotalDocuments).Error; err != nil {
		return nil, err
	}

	type typeCount struct {
		FileType string
		Count    int64
	}
	var typeCounts []typeCount
	err := db.Model(&model.Document{}).
		Select("file_type, SUM(chunk_count) AS count").
		Group("file_type").
		Scan(&typeCounts).Error
	if err != nil {
		return nil, err
	}
	for _, tc := range typeCounts {
		stats.ChunksByType[tc.FileType] = tc.Count
	}

	type dayCount struct {
		Day   time.Time
		Count int64
	}
	var dayCounts []dayCount
	err = db.Model(&model.Document{}).
		Select("DATE_TRUNC('day', uploaded_at) AS day, COUNT(*) AS count").
		Where("uploaded_at >= ?", time.Now().UTC().AddDate(0, 0, -7)).
		Group("day").
		Scan(&dayCounts).Error
	if err != nil {
		return nil, err
	}
	for _, dc := range dayCounts {
		stats.RecentUploads[dc.Day.Format("2006-01-02")] = dc.Count
	}

	return stats, nil
}

// InvalidateEmptyHint drops the cached is-empty answer. Called after writes
// that bypass Upsert/DeleteByDocument, such as transactional ingest.
func (v *VectorStore) InvalidateEmptyHint(ctx context.Context) {
	v.hints.Invalidate(ctx, emptyHintKey)
}

// IsEmpty reports whether the index has no chunks. The answer may be up to
// 30 seconds stale; callers treat it as a hint.
func (v *VectorStore) IsEmpty(ctx context.Context) (bool, error) {
	if empty, ok := v.hints.GetBool(ctx, emptyHintKey); ok {
		return empty, nil
	}

	var exists bool
	if err := v.db.WithContext(ctx).Raw("SELECT EXISTS (SELECT 1 FROM document_chunks)").Scan(&exists).Error; err != nil {
		return false, err
	}

	empty := !exists
	v.hints.SetBool(ctx, emptyHintKey, empty, emptyHintTTL)
	return empty, nil
}
