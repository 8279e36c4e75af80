package chat

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/utils/middleware"
	"github.com/finassist/finchat-api/utils/response"
	"github.com/finassist/finchat-api/utils/validation"
)

// ChatHandler serves the RAG query endpoint
type ChatHandler struct {
	engine *services.RAGEngine
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine *services.RAGEngine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// ChatRequest is one user query
type ChatRequest struct {
	Query     string `json:"query" validate:"required,min=1,max=2000"`
	SessionID string `json:"session_id"`
}

// Query answers a user question with retrieval-augmented generation
func (h *ChatHandler) Query(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if ok, msg := validation.ValidateQuery(req.Query); !ok {
		return response.BadRequest(c, msg)
	}

	result, err := h.engine.Query(c.Context(), user, req.Query, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSessionID):
			return response.BadRequest(c, "Invalid session id")
		case errors.Is(err, services.ErrSessionForbidden):
			return response.Forbidden(c, "Session belongs to another user")
		case errors.Is(err, services.ErrGenerationFailed):
			return response.ServiceUnavailable(c, "Answer generation is temporarily unavailable")
		default:
			return response.InternalServerError(c, "Failed to process query")
		}
	}

	return response.OK(c, result)
}
