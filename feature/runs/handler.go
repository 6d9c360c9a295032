package runs

import (
	"context"
	"errors"
	"time"

	"collection-manager/core/logger"
	"collection-manager/core/reconcile"
	"collection-manager/feature/history"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// History is the read side of the run history store.
type History interface {
	List(ctx context.Context, opts history.ListOptions) ([]history.RunRecord, error)
	Get(ctx context.Context, id string) (*history.RunRecord, error)
}

// Handler handles HTTP requests for runs.
type Handler struct {
	ctx     context.Context
	runner  *Runner
	history History
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. Background runs use ctx, so cancelling
// it stops them between collections. history may be nil.
func NewHandler(ctx context.Context, runner *Runner, history History, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ctx: ctx, runner: runner, history: history, logger: logger}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	group := app.Group("/runs")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleTrigger)
	group.Get("/status", h.HandleStatus)
	group.Get("/:id", h.HandleGet)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "running": h.runner.Status().Running})
}

// HandleStatus returns the current and last run.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.runner.Status())
}

// HandleTrigger starts a run in the background.
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var t Trigger
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&t); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	t.Scheduled = false
	t.Source = "api"

	runID, err := h.runner.Start(h.ctx, t)
	switch {
	case errors.Is(err, reconcile.ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNothingToRun):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Failed to start run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Run triggered", zap.String("run_id", runID), zap.Bool("dry_run", t.DryRun))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"run_id": runID})
}

// HandleList returns stored runs, newest first.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "run history is disabled"})
	}
	opts := history.ListOptions{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
		State:  c.Query("state"),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "since must be RFC 3339"})
		}
		opts.Since = t
	}

	records, err := h.history.List(c.Context(), opts)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": records})
}

// HandleGet returns the full summary of one run.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	if last := h.runner.Last(); last != nil && last.RunID == id {
		return c.JSON(last)
	}
	if h.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}

	rec, err := h.history.Get(c.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to get run", zap.String("run_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	summary, err := rec.DecodeSummary()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}
