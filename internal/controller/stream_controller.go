package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travelmind-be/internal/pkg/logger"
	"travelmind-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IStreamController interface {
	RegisterRoutes(r fiber.Router)
	EnrichProgressive(ctx *fiber.Ctx) error
}

type streamController struct {
	planService service.IPlanService
	logger      logger.ILogger
}

func NewStreamController(planService service.IPlanService, log logger.ILogger) IStreamController {
	return &streamController{
		planService: planService,
		logger:      log,
	}
}

func (c *streamController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/plan/v1")
	h.Get(":id/enrich-progressive", c.EnrichProgressive)
}

// EnrichProgressive streams enrichment over SSE, one "data:" frame per
// completed unit. A failed flush means the client hung up; the stream
// context is cancelled and no more units get scheduled.
func (c *streamController) EnrichProgressive(ctx *fiber.Ctx) error {
	planID := ctx.Params("id")

	// The fiber request context dies when the handler returns, so the
	// stream gets its own cancellable context tied to flush failures.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.planService.StreamEnrichment(streamCtx, planID)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	log := c.logger
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					if log != nil {
						log.Info("StreamController", "Client disconnected during enrichment", map[string]interface{}{"plan_id": planID})
					}
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
