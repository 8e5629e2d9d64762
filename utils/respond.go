package utils

import (
	"errors"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RespondError maps service errors onto HTTP statuses. Unclassified errors
// are logged and reported as 500 without leaking details.
func RespondError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, apperrors.ErrStateConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}

	config.Logger.Error(message,
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   "An internal server error occurred.",
	})
}

// BadRequest is the common shape for body/query parse failures.
func BadRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
