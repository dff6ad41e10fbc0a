package handlers

import (
	"errors"
	"net/http"
	"time"

	"heroes/internal/services"
	"heroes/internal/storage"
	"heroes/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

// ToHTTPStatus maps a service error to its HTTP status code.
func ToHTTPStatus(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if _, ok := validation.AsError(err); ok {
		return fiber.StatusBadRequest
	}
	switch {
	case errors.Is(err, services.ErrCharacterNotFound),
		errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidAlignment),
		errors.Is(err, storage.ErrInvalidFilename),
		errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrNotImage),
		errors.Is(err, storage.ErrTooLarge):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the fiber error handler writing ErrorResponse bodies.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := ToHTTPStatus(err)
	resp := ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	if verr, ok := validation.AsError(err); ok {
		resp.Message = "Validation failed"
		resp.ValidationErrors = verr.Fields
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		resp.Message = "An unexpected error occurred"
	}

	return c.Status(status).JSON(resp)
}
