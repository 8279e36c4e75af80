package services

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/services/objectstore"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentService serves document listings and deletion on top of the record
// store and vector index.
type DocumentService struct {
	db      *gorm.DB
	vectors *VectorStore
	archive *objectstore.SpacesClient // nil when archival is disabled
}

// NewDocumentService creates a new document service
func NewDocumentService(db *gorm.DB, vectors *VectorStore, archive *objectstore.SpacesClient) *DocumentService {
	return &DocumentService{db: db, vectors: vectors, archive: archive}
}

// List returns all documents, newest first
func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.WithContext(ctx).Order("uploaded_at DESC").Find(&docs).Error
	return docs, err
}

// Get returns one document by id
func (s *DocumentService) Get(ctx context.Context, documentID string) (*model.Document, error) {
	var doc model.Document
	if err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document and its chunks in one transaction and returns
// the number of chunks deleted.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (int64, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return 0, err
	}

	var chunksDeleted int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("document_id = ?", documentID).Delete(&model.DocumentChunk{})
		if result.Error != nil {
			return result.Error
		}
		chunksDeleted = result.RowsAffected

		return tx.Delete(&model.Document{}, "id = ?", documentID).Error
	})
	if err != nil {
		return 0, err
	}
	s.vectors.InvalidateEmptyHint(ctx)

	if s.archive != nil && doc.StorageKey != "" {
		if err := s.archive.DeleteUpload(ctx, doc.StorageKey); err != nil {
			log.Printf("Archive cleanup failed for %s: %v", documentID, err)
		}
	}

	return chunksDeleted, nil
}

// Stats returns the index statistics
func (s *DocumentService) Stats(ctx context.Context) (*IndexStats, error) {
	return s.vectors.Stats(ctx)
}
