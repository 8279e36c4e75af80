package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
)

// AdminDocumentService layers audit logging over document oversight
type AdminDocumentService struct {
	db        *gorm.DB
	documents *DocumentService
	activity  *ActivityLogger
}

// NewAdminDocumentService creates a new admin document service
func NewAdminDocumentService(db *gorm.DB, documents *DocumentService, activity *ActivityLogger) *AdminDocumentService {
	return &AdminDocumentService{db: db, documents: documents, activity: activity}
}

// List returns documents with pagination, newest first
func (s *AdminDocumentService) List(ctx context.Context, page, perPage int) ([]model.Document, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Document{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	var docs []model.Document
	err := s.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&docs).Error
	return docs, total, err
}

// Delete removes a document with its chunks and audits the deletion in the
// same transaction as the removal.
func (s *AdminDocumentService) Delete(ctx context.Context, admin *model.User, documentID, clientAddr string) (int64, error) {
	doc, err := s.documents.Get(ctx, documentID)
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

		if err := tx.Delete(&model.Document{}, "id = ?", documentID).Error; err != nil {
			return err
		}

		return s.activity.LogTx(tx, ActivityEntry{
			Admin:        admin,
			Action:       model.ActionDocumentDelete,
			ResourceType: "document",
			ResourceID:   documentID,
			Details: map[string]interface{}{
				"filename":       doc.Filename,
				"chunks_deleted": chunksDeleted,
			},
			ClientAddr: clientAddr,
			Result:     model.ActivityResultSuccess,
		})
	})
	if err != nil {
		return 0, err
	}
	s.documents.vectors.InvalidateEmptyHint(ctx)

	return chunksDeleted, nil
}

// Stats returns the index statistics
func (s *AdminDocumentService) Stats(ctx context.Context) (*IndexStats, error) {
	return s.documents.Stats(ctx)
}
