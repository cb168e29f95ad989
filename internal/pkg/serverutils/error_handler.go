package serverutils

import (
	"errors"

	"chart-coach-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindUnknownScenario:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindBusy:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns any error returned by a handler into the {"error": ...} envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := StatusFor(err)
		message := apperror.Message(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		}

		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}
