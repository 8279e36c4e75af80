package response

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the error envelope returned by every failing endpoint.
type ErrorBody struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error kinds; each maps to a fixed HTTP status.
const (
	KindValidation      = "ValidationError"
	KindAuthentication  = "AuthenticationError"
	KindAuthorization   = "AuthorizationError"
	KindNotFound        = "NotFoundError"
	KindConflict        = "ConflictError"
	KindPayloadTooLarge = "PayloadTooLargeError"
	KindUpstreamFailure = "UpstreamFailureError"
	KindInternal        = "InternalError"
)

func statusFor(kind string) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuthentication:
		return fiber.StatusUnauthorized
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusBadRequest
	case KindPayloadTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case KindUpstreamFailure:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail renders the error envelope for a taxonomy kind. The request id set by
// the requestid middleware is echoed into details so the response can be
// correlated with the log line.
func Fail(c *fiber.Ctx, kind, message string) error {
	return FailWithDetails(c, kind, message, nil)
}

// FailWithDetails renders the error envelope with extra detail fields.
func FailWithDetails(c *fiber.Ctx, kind, message string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		details["request_id"] = rid
	}
	return c.Status(statusFor(kind)).JSON(ErrorBody{
		Error:     kind,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// BadRequest returns a 400 validation failure
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, KindValidation, message)
}

// Unauthorized returns a 401 authentication failure
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Authentication required"
	}
	return Fail(c, KindAuthentication, message)
}

// Forbidden returns a 403 authorization failure
func Forbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Access forbidden"
	}
	return Fail(c, KindAuthorization, message)
}

// NotFound returns a 404 failure
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Fail(c, KindNotFound, message)
}

// Conflict returns a 400 duplicate-resource failure
func Conflict(c *fiber.Ctx, message string) error {
	return Fail(c, KindConflict, message)
}

// PayloadTooLarge returns a 413 failure
func PayloadTooLarge(c *fiber.Ctx, message string) error {
	return Fail(c, KindPayloadTooLarge, message)
}

// ServiceUnavailable returns a 503 upstream failure
func ServiceUnavailable(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Fail(c, KindUpstreamFailure, message)
}

// InternalServerError returns a 500 failure
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Fail(c, KindInternal, message)
}

// OK returns a 200 response with the given payload
func OK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created returns a 201 response with the given payload
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Paginated wraps a list payload with pagination metadata
func Paginated(c *fiber.Ctx, key string, data interface{}, meta PaginationMeta) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		key:          data,
		"pagination": meta,
	})
}

// ClampPageSize bounds a per-page value to the allowed 10..100 window
func ClampPageSize(perPage int) int {
	if perPage < 10 {
		return 10
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

// CalculatePagination calculates pagination metadata
func CalculatePagination(page, perPage int, total int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	perPage = ClampPageSize(perPage)

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	return PaginationMeta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
