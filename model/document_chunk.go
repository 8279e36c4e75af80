package model

import (
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocumentChunk is a row of the vector index: one bounded window of an
// ingested document together with its embedding. Chunks are created by
// ingestion, destroyed by document deletion, and never mutated.
//
// The embedding column dimension matches text-embedding-004 (768). Only the
// vector store service touches this table.
type DocumentChunk struct {
	ID         string          `gorm:"primaryKey;type:varchar(80)" json:"chunk_id"`
	DocumentID string          `gorm:"not null;index;type:varchar(64)" json:"document_id"`
	ChunkIndex int             `gorm:"not null" json:"chunk_index"`
	Text       string          `gorm:"type:text;not null" json:"text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	Metadata   datatypes.JSON  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ChunkMetadata is the shape serialized into DocumentChunk.Metadata.
type ChunkMetadata struct {
	DocumentID       string `json:"document_id"`
	ChunkIndex       int    `json:"chunk_index"`
	Filename         string `json:"filename"`
	UploadDate       string `json:"upload_date"`
	FileType         string `json:"file_type"`
	FileSizeBytes    int64  `json:"file_size_bytes"`
	UploaderUserID   uint   `json:"uploader_user_id"`
	UploaderUsername string `json:"uploader_username"`
}

// ChunkID builds the canonical id {document_id}_chunk_{index}
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// NewDocumentChunk assembles a chunk row with its canonical id
func NewDocumentChunk(documentID string, index int, text string, embedding []float32, metadata datatypes.JSON) DocumentChunk {
	return DocumentChunk{
		ID:         ChunkID(documentID, index),
		DocumentID: documentID,
		ChunkIndex: index,
		Text:       text,
		Embedding:  pgvector.NewVector(embedding),
		Metadata:   metadata,
	}
}

// TableName specifies the table name for DocumentChunk
func (DocumentChunk) TableName() string {
	return "document_chunks"
}
