package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/services/llm"
	"github.com/finassist/finchat-api/services/objectstore"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrExtractionFailed    = errors.New("text extraction failed")
	ErrEmbeddingFailed     = errors.New("embedding generation failed")
	ErrIndexWriteFailed    = errors.New("vector index write failed")
)

// Gemini caps batch embedding at 100 texts per request
const embedBatchSize = 100

// IngestResult is the outcome of a successful document ingest
type IngestResult struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunks_created"`
	UploadDate time.Time `json:"upload_date"`
}

// DocumentProcessor runs the ingestion pipeline: extract, chunk, embed,
// index. The document record and its chunks are committed in a single
// transaction, so a failed ingest leaves no partial state behind.
type DocumentProcessor struct {
	db        *gorm.DB
	config    *ConfigManager
	extractor *TextExtractor
	embedder  llm.Embedder
	vectors   *VectorStore
	archive   *objectstore.SpacesClient // nil when archival is disabled
}

// NewDocumentProcessor creates the ingestion pipeline
func NewDocumentProcessor(db *gorm.DB, config *ConfigManager, embedder llm.Embedder, vectors *VectorStore, archive *objectstore.SpacesClient) *DocumentProcessor {
	return &DocumentProcessor{
		db:        db,
		config:    config,
		extractor: NewTextExtractor(),
		embedder:  embedder,
		vectors:   vectors,
		archive:   archive,
	}
}

// NewDocumentID generates an id of the form doc_ followed by 12 hex chars
func NewDocumentID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "doc_" + hex[:12]
}

// Ingest processes one uploaded file end to end
func (p *DocumentProcessor) Ingest(ctx context.Context, uploader *model.User, filename string, content []byte) (*IngestResult, error) {
	cfg := p.config.Snapshot()

	fileType, ok := SupportedFileType(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filename)
	}
	if int64(len(content)) > cfg.MaxFileSizeBytes() {
		return nil, fmt.Errorf("%w: %d bytes, limit %d MB", ErrFileTooLarge, len(content), cfg.MaxFileSizeMB)
	}

	text, err := p.extractor.Extract(content, fileType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	chunker := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	chunks := chunker.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document produced no chunks", ErrExtractionFailed)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedBatches(ctx, cfg.GeminiEmbeddingModel, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	documentID := NewDocumentID()
	uploadDate := time.Now().UTC()

	doc := model.Document{
		ID:               documentID,
		Filename:         filename,
		FileType:         fileType,
		FileSizeBytes:    int64(len(content)),
		ChunkCount:       len(chunks),
		UploaderID:       uploader.ID,
		UploaderUsername: uploader.Username,
		UploadedAt:       uploadDate,
	}

	chunkRows, err := p.buildChunkRows(doc, chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexWriteFailed, err)
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		return tx.Create(&chunkRows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexWriteFailed, err)
	}
	p.vectors.InvalidateEmptyHint(ctx)

	// Archival of the original bytes is best effort and never fails the ingest
	if p.archive != nil {
		if key, err := p.archive.StoreUpload(ctx, documentID, filename, content); err != nil {
			log.Printf("Document archival failed for %s: %v", documentID, err)
		} else {
			p.db.Model(&model.Document{}).Where("id = ?", documentID).Update("storage_key", key)
		}
	}

	return &IngestResult{
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: len(chunks),
		UploadDate: uploadDate,
	}, nil
}

// embedBatches embeds all chunk texts in provider-sized batches, preserving
// order. Any batch failure fails the whole ingest.
func (p *DocumentProcessor) embedBatches(ctx context.Context, embedModel string, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		g.Go(func() error {
			batch, err := p.embedder.EmbedTexts(gctx, embedModel, texts[start:end])
			if err != nil {
				return err
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (p *DocumentProcessor) buildChunkRows(doc model.Document, chunks []Chunk, vectors [][]float32) ([]model.DocumentChunk, error) {
	rows := make([]model.DocumentChunk, 0, len(chunks))
	for i, c := range chunks {
		meta := model.ChunkMetadata{
			DocumentID:       doc.ID,
			ChunkIndex:       c.Index,
			Filename:         doc.Filename,
			UploadDate:       doc.UploadedAt.Format(time.RFC3339),
			FileType:         doc.FileType,
			FileSizeBytes:    doc.FileSizeBytes,
			UploaderUserID:   doc.UploaderID,
			UploaderUsername: doc.UploaderUsername,
		}
		rawMeta, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}

		rows = append(rows, model.NewDocumentChunk(doc.ID, c.Index, c.Text, vectors[i], datatypes.JSON(rawMeta)))
	}
	return rows, nil
}
