package controller

import (
	"travelmind-be/internal/dto"
	"travelmind-be/internal/pkg/serverutils"
	"travelmind-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Refine(ctx *fiber.Ctx) error
	Alternatives(ctx *fiber.Ctx) error
	RegenerateDay(ctx *fiber.Ctx) error
	Trace(ctx *fiber.Ctx) error
	EnrichActivity(ctx *fiber.Ctx) error
}

type planController struct {
	planService service.IPlanService
}

func NewPlanController(planService service.IPlanService) IPlanController {
	return &planController{
		planService: planService,
	}
}

func (c *planController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/plan/v1")
	h.Post("", c.Generate)
	h.Post("enrich-activity", c.EnrichActivity)
	h.Get(":id", c.Show)
	h.Post(":id/refine", c.Refine)
	h.Post(":id/alternatives", c.Alternatives)
	h.Post(":id/regenerate-day", c.RegenerateDay)
	h.Get(":id/trace", c.Trace)
}

func (c *planController) Generate(ctx *fiber.Ctx) error {
	var req dto.GeneratePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	plan, err := c.planService.GeneratePlan(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Plan generated", plan))
}

func (c *planController) Show(ctx *fiber.Ctx) error {
	plan, err := c.planService.GetPlan(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan", plan))
}

func (c *planController) Refine(ctx *fiber.Ctx) error {
	var req dto.RefinePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	plan, err := c.planService.RefinePlan(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Plan refined", plan))
}

func (c *planController) Alternatives(ctx *fiber.Ctx) error {
	var req dto.AlternativesRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	alternatives, err := c.planService.Alternatives(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Alternative destinations", alternatives))
}

func (c *planController) RegenerateDay(ctx *fiber.Ctx) error {
	var req dto.RegenerateDayRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	plan, err := c.planService.RegenerateDay(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Day regenerated", plan))
}

func (c *planController) Trace(ctx *fiber.Ctx) error {
	trace, err := c.planService.GetTrace(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Pipeline trace", trace))
}

func (c *planController) EnrichActivity(ctx *fiber.Ctx) error {
	var req dto.EnrichActivityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	enrichment, err := c.planService.EnrichActivity(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Activity enriched", enrichment))
}
