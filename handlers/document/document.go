package document

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/middleware"
	"github.com/finassist/finchat-api/utils/response"
)

// DocumentHandler serves the document endpoints
type DocumentHandler struct {
	processor *services.DocumentProcessor
	documents *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(processor *services.DocumentProcessor, documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{processor: processor, documents: documents}
}

// Upload ingests a multipart file into the knowledge base
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file field is required")
	}
	if fileHeader.Filename == "" {
		return response.BadRequest(c, "Filename is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Unable to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.BadRequest(c, "Unable to read uploaded file")
	}

	result, err := h.processor.Ingest(c.Context(), user, fileHeader.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedFileType):
			return response.BadRequest(c, "Only PDF, DOCX and TXT files are supported")
		case errors.Is(err, services.ErrFileTooLarge):
			return response.PayloadTooLarge(c, "File exceeds the maximum allowed size")
		case errors.Is(err, services.ErrExtractionFailed):
			return response.BadRequest(c, "Could not extract text from the file")
		case errors.Is(err, services.ErrEmbeddingFailed), errors.Is(err, services.ErrIndexWriteFailed):
			return response.ServiceUnavailable(c, "Document indexing is temporarily unavailable")
		default:
			return response.InternalServerError(c, "Failed to process document")
		}
	}

	return response.Created(c, result)
}

// List returns all documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs, err := h.documents.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list documents")
	}
	return response.OK(c, fiber.Map{
		"documents": docs,
		"total":     len(docs),
	})
}

// Delete removes a document and its chunks
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	documentID := c.Params("id")
	if documentID == "" {
		return response.BadRequest(c, "Document id is required")
	}

	chunksDeleted, err := h.documents.Delete(c.Context(), documentID)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to delete document")
	}

	return response.OK(c, fiber.Map{
		"success":        true,
		"chunks_deleted": chunksDeleted,
	})
}

// Stats returns index statistics
func (h *DocumentHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.documents.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	return response.OK(c, stats)
}
