package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"collection-manager/feature/runs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runLibraries   []string
	runCollections []string
	runDryRun      bool
	runScheduled   bool
)

// runCmd performs a single reconciliation run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile collections once and exit",
	Long: `Reconcile the configured collections once.

Examples:
  # Everything
  collection-manager run

  # One library, preview only
  collection-manager run --library Movies --dry-run

  # Only the collections due today
  collection-manager run --scheduled`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logg.Sync()
		applyCollectionsFlag(cmd, cfg)

		a, err := bootstrap(cfg, logg)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := a.runner.Run(ctx, runs.Trigger{
			Libraries:   runLibraries,
			Collections: runCollections,
			DryRun:      runDryRun || cfg.Sync.DryRun,
			Scheduled:   runScheduled,
			Source:      "cli",
		})
		if errors.Is(err, runs.ErrNothingToRun) {
			logg.Info("Nothing to run")
			return nil
		}
		if summary != nil {
			logSummary(logg, summary)
		}
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		if err := a.prune(context.Background()); err != nil {
			logg.Warn("Failed to prune old reports", zap.Error(err))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVarP(&runLibraries, "library", "l", nil, "only reconcile these libraries")
	runCmd.Flags().StringSliceVar(&runCollections, "collection", nil, "only reconcile these collections")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "compute diffs without changing Jellyfin")
	runCmd.Flags().BoolVar(&runScheduled, "scheduled", false, "only reconcile collections due today")
	RootCmd.AddCommand(runCmd)
}
