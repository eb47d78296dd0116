package serverutils

import (
	"errors"

	"jit-learning-be/pkg/genai"
	"jit-learning-be/pkg/learning/dailyctx"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// uniform response envelope. Domain sentinels map to specific statuses;
// anything unrecognized becomes a generic 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		switch {
		case errors.Is(err, dailyctx.ErrContextUnavailable):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse("daily context unavailable, initialize the learning day first"))
		case errors.Is(err, genai.ErrGenerationFailed):
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("failed to generate content"))
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
		}
	}
}
