package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/store"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, undefined, internal_error
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
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errUndefined returns a 422 error for a house system with no solution.
func errUndefined(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "undefined", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFrom maps domain errors onto responses.
func errFrom(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, houses.ErrGeometricallyUndefined):
		return errUndefined(c, err.Error())
	case errors.Is(err, houses.ErrInvalidInput),
		errors.Is(err, houses.ErrUnknownSystem),
		errors.Is(err, chart.ErrNoTime):
		return errBadRequest(c, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return errNotFound(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
