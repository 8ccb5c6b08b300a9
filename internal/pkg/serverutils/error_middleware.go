package serverutils

import (
	"errors"

	"secure-docchat-be/pkg/chat/pipeline"
	"secure-docchat-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates domain errors into HTTP statuses so
// controllers can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErr.Error()))

		case errors.Is(err, pipeline.ErrSessionTerminated):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, pipeline.MsgTerminated))

		case errors.Is(err, retrieval.ErrIndexNotReady):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(fiber.StatusConflict, "No document has been indexed yet. Upload a document first."))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
