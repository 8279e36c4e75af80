package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/middleware"
	"github.com/finassist/finchat-api/utils/response"
)

// ListDocuments returns documents with pagination
func (h *AdminHandler) ListDocuments(c *fiber.Ctx) error {
	page, perPage := pagination(c)

	docs, total, err := h.documents.List(c.Context(), page, perPage)
	if err != nil {
		return response.InternalServerError(c, "Failed to list documents")
	}
	return response.Paginated(c, "documents", docs, response.CalculatePagination(page, perPage, total))
}

// DeleteDocument removes a document with an audit entry
func (h *AdminHandler) DeleteDocument(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	documentID := c.Params("id")
	if documentID == "" {
		return response.BadRequest(c, "Document id is required")
	}

	chunksDeleted, err := h.documents.Delete(c.Context(), admin, documentID, c.IP())
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

// DocumentStats returns index statistics
func (h *AdminHandler) DocumentStats(c *fiber.Ctx) error {
	stats, err := h.documents.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	return response.OK(c, stats)
}
