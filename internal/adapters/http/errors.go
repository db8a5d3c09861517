package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errPlanner maps planner error kinds to unprocessable-entity
// responses so clients can distinguish bad geometry from crashes.
func errPlanner(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyBoundary):
		return newError(c, 422, "empty_boundary", err.Error())
	case errors.Is(err, domain.ErrDegenerateHull):
		return newError(c, 422, "degenerate_hull", err.Error())
	case errors.Is(err, domain.ErrNoPath):
		return newError(c, 422, "no_path", err.Error())
	case errors.Is(err, domain.ErrGeometryPrecision):
		return newError(c, 422, "geometry_precision", err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
