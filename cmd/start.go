package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"collection-manager/core/loader"
	"collection-manager/core/logger"
	"collection-manager/core/middleware/auth"
	"collection-manager/core/middleware/rayid"
	"collection-manager/core/server"
	"collection-manager/feature/collections"
	"collection-manager/feature/runs"
	"collection-manager/feature/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the collection manager daemon",
	Long:  `Starts the HTTP API and the daily scheduler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration and Logger
		cfg, logg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logg.Sync()
		applyCollectionsFlag(cmd, cfg)

		// 2. Wire the engine
		a, err := bootstrap(cfg, logg)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(collections.NewFeature(a.defs))
		mgr.Register(runs.NewFeature(ctx, a.runner, a.historyAPI(), logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API, health stays public)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: server.PublicPaths}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}
		logg.Info("Features loaded", zap.Strings("features", mgr.Enabled()))

		// 6. Scheduler
		if cfg.Scheduler.Enabled {
			sched, err := scheduler.New(cfg.Scheduler, func(ctx context.Context) error {
				return scheduledRun(ctx, a)
			}, logg)
			if err != nil {
				return fmt.Errorf("failed to create scheduler: %w", err)
			}
			go func() {
				if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logg.Error("Scheduler stopped", zap.Error(err))
				}
			}()
		}

		// 7. Start Server
		serverErr := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			serverErr <- app.Listen(cfg.Server.Address())
		}()

		// 8. Graceful Shutdown
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		}
		logg.Info("Shutting down server...")
		stop()
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown failed", zap.Error(err))
		}
		a.runner.Wait()
		return nil
	},
}

// scheduledRun runs the collections due today and prunes old reports.
func scheduledRun(ctx context.Context, a *app) error {
	summary, err := a.runner.Run(ctx, runs.Trigger{
		DryRun:    a.cfg.Sync.DryRun,
		Scheduled: true,
		Source:    "scheduler",
	})
	if errors.Is(err, runs.ErrNothingToRun) {
		a.logger.Info("No collection due today")
		return nil
	}
	if summary != nil {
		logSummary(a.logger, summary)
	}
	if err != nil {
		return err
	}
	return a.prune(ctx)
}

func init() {
	RootCmd.AddCommand(startCmd)
}
