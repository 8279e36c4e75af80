package model

import (
	"time"
)

// Document tracks an ingested file. The chunk payload lives in the vector
// index (DocumentChunk); this record carries the bookkeeping the admin
// surface needs, and ChunkCount mirrors the number of indexed chunks.
type Document struct {
	ID               string    `gorm:"primaryKey;type:varchar(64)" json:"document_id"`
	Filename         string    `gorm:"not null" json:"filename"`
	FileType         string    `gorm:"type:varchar(10);not null" json:"file_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	ChunkCount       int       `gorm:"not null" json:"chunk_count"`
	UploaderID       uint      `gorm:"index" json:"uploader_user_id"`
	UploaderUsername string    `gorm:"type:varchar(30)" json:"uploader_username"`
	UploadedAt       time.Time `gorm:"index" json:"upload_date"`

	// Object-store key of the archived original, when archival is enabled.
	StorageKey string `gorm:"type:varchar(255)" json:"-"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}
