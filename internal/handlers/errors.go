package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/angkor-pos/internal/services"
	"github.com/example/angkor-pos/internal/utils"
)

// ErrorHandler maps domain errors onto the response envelope. Validation maps
// to 400, missing entities to 404, duplicates and business-rule conflicts to
// 409. Anything else is a persistence-layer failure: logged and returned as a
// bare 500 with no retry.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"message": fiberErr.Message,
		})
	}

	code := fiber.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, services.ErrValidation):
		code = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, services.ErrConflict):
		code = fiber.StatusConflict
	default:
		utils.Logger.WithError(err).Error("unexpected failure")
		message = "internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
