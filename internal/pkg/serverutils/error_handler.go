package serverutils

import (
	"errors"

	"travelmind-be/pkg/travel"
	"travelmind-be/pkg/travel/agent"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors that escape a handler into the
// standard envelope. Handlers that already wrote a status keep it; everything
// else is mapped by error identity.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, travel.ErrPlanNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, agent.ErrEnhancementFailed):
			code = fiber.StatusBadGateway
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
