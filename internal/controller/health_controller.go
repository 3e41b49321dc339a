package controller

import (
	"travelmind-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	provider     string
	primaryModel string
	insightModel string
}

func NewHealthController(provider, primaryModel, insightModel string) IHealthController {
	return &healthController{
		provider:     provider,
		primaryModel: primaryModel,
		insightModel: insightModel,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	payload := map[string]interface{}{
		"status":        "ok",
		"provider":      c.provider,
		"primary_model": c.primaryModel,
	}
	if c.insightModel != "" {
		payload["insight_model"] = c.insightModel
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", payload))
}
