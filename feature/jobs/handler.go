package jobs

import (
	"context"

	"bansync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes the runner over HTTP.
type Handler struct {
	runner *Runner
	ctx    context.Context
	logger *zap.Logger
}

// NewHandler creates a handler. Background runs are bound to ctx.
func NewHandler(ctx context.Context, runner *Runner, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, ctx: ctx, logger: logger}
}

// RegisterRoutes registers the job routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/jobs")
	group.Get("/", h.HandleList)
	group.Post("/:name", h.HandleTrigger)
}

// HandleList returns the status of every job.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.runner.Statuses())
}

// HandleTrigger starts a job. With ?wait=true the request blocks until the run
// finishes and returns its report; otherwise it answers 202 immediately.
// A job that is already running answers 409 unless waiting.
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.logger, c).With(zap.String("job", name))

	if !h.runner.Has(name) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrUnknownJob.Error()})
	}

	if c.QueryBool("wait") {
		result, err := h.runner.Run(c.UserContext(), name)
		if err != nil {
			l.Error("Triggered job failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "result": result})
		}
		return c.JSON(result)
	}

	if h.runner.Running(name) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "job already running"})
	}

	l.Info("Job triggered")
	go func() {
		_, _ = h.runner.Run(h.ctx, name)
	}()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job": name, "status": "started"})
}
