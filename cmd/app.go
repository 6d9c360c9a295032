package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collection-manager/core/config"
	"collection-manager/core/database"
	"collection-manager/core/logger"
	"collection-manager/core/reconcile"
	"collection-manager/core/runlock"
	"collection-manager/core/storage"
	"collection-manager/feature/archive"
	"collection-manager/feature/arr"
	"collection-manager/feature/collections"
	"collection-manager/feature/history"
	"collection-manager/feature/jellyfin"
	"collection-manager/feature/notify"
	"collection-manager/feature/providers"
	"collection-manager/feature/runs"

	"go.uber.org/zap"
)

// app bundles the wired collaborators shared by the run and start commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	defs    *collections.File
	history *history.Store
	archive *archive.Archive
	runner  *runs.Runner
}

// loadConfig loads and validates the configuration and creates the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)
	if err := cfg.Validate(); err != nil {
		return nil, logg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logg, nil
}

// bootstrap wires every collaborator of the engine from the configuration.
func bootstrap(cfg *config.Config, logg *zap.Logger) (*app, error) {
	defs, err := collections.Load(cfg.Sync.CollectionsPath)
	if err != nil {
		return nil, err
	}

	server, err := jellyfin.NewClient(cfg.Jellyfin, logg)
	if err != nil {
		return nil, err
	}

	var tmdb providers.TMDbFeed
	if cfg.TMDb.APIKey != "" {
		c, err := providers.NewTMDbClient(cfg.TMDb, logg)
		if err != nil {
			return nil, err
		}
		tmdb = c
	}
	var trakt providers.TraktFeed
	if cfg.Trakt.ClientID != "" {
		c, err := providers.NewTraktClient(cfg.Trakt, logg)
		if err != nil {
			return nil, err
		}
		trakt = c
	}

	forwarder, err := newForwarder(cfg, logg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logg, defs: defs}
	reporter, err := a.reporters()
	if err != nil {
		return nil, err
	}

	opts := reconcile.Options{Concurrency: cfg.Sync.Concurrency}
	if opts.Match, err = cfg.Matching.MatchConfig(); err != nil {
		return nil, err
	}
	if cfg.Sync.LockFile != "" {
		lock, err := runlock.New(cfg.Sync.LockFile)
		if err != nil {
			return nil, err
		}
		opts.Locker = lock
	}

	engine, err := reconcile.NewEngine(reconcile.Dependencies{
		Library:     server,
		Collections: server,
		Source:      providers.NewSource(defs, tmdb, trakt, logg),
		Forwarder:   forwarder,
		Reporter:    reporter,
	}, opts, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	a.runner = runs.NewRunner(engine, defs, loc, logg)
	return a, nil
}

// newForwarder returns nil when neither Radarr nor Sonarr is configured.
func newForwarder(cfg *config.Config, logg *zap.Logger) (reconcile.AcquisitionForwarder, error) {
	var radarr, sonarr arr.Adder
	if cfg.Radarr.Enabled() {
		r, err := arr.NewRadarr(cfg.Radarr, logg)
		if err != nil {
			return nil, err
		}
		radarr = r
	}
	if cfg.Sonarr.Enabled() {
		s, err := arr.NewSonarr(cfg.Sonarr, logg)
		if err != nil {
			return nil, err
		}
		sonarr = s
	}
	if radarr == nil && sonarr == nil {
		return nil, nil
	}
	return arr.NewForwarder(radarr, sonarr, logg), nil
}

// reporters builds the enabled run reporters. The history store and the archive
// are kept on the app for the API and for pruning.
func (a *app) reporters() (reconcile.RunReporter, error) {
	var out []reconcile.RunReporter

	if a.cfg.Discord.Enabled() {
		d, err := notify.NewDiscord(a.cfg.Discord, a.logger)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	if a.cfg.Database.Enabled {
		db, err := database.Connect(a.cfg.Database)
		if err != nil {
			// History is optional; runs still proceed without it.
			a.logger.Warn("Run history disabled, database connection failed", zap.Error(err))
		} else {
			store, err := history.NewStore(db, a.logger)
			if err != nil {
				return nil, err
			}
			a.history = store
			out = append(out, store)
			a.logger.Info("Connected to history database", zap.String("driver", a.cfg.Database.Driver))
		}
	}

	if a.cfg.Storage.Enabled {
		client, err := storage.NewClient(a.cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.archive = archive.New(client, a.cfg.Storage, a.logger)
		out = append(out, a.archive)
	}

	if len(out) == 0 {
		return nil, nil
	}
	return reconcile.MultiReporter(out...), nil
}

// historyAPI returns the history store as the runs API sees it, or nil.
func (a *app) historyAPI() runs.History {
	if a.history == nil {
		return nil
	}
	return a.history
}

// prune removes stored and archived reports past the retention window.
func (a *app) prune(ctx context.Context) error {
	if a.cfg.Sync.RetentionDays <= 0 {
		return nil
	}
	before := time.Now().AddDate(0, 0, -a.cfg.Sync.RetentionDays)

	var errs []error
	if a.history != nil {
		n, err := a.history.Prune(ctx, before)
		if err != nil {
			errs = append(errs, err)
		} else if n > 0 {
			a.logger.Info("Pruned run history", zap.Int64("records", n))
		}
	}
	if a.archive != nil {
		n, err := a.archive.Prune(ctx, before)
		if err != nil {
			errs = append(errs, err)
		} else if n > 0 {
			a.logger.Info("Pruned archived reports", zap.Int("objects", n))
		}
	}
	return errors.Join(errs...)
}

// logSummary writes the totals of a run.
func logSummary(logg *zap.Logger, s *reconcile.RunSummary) {
	t := s.Totals
	logg.Info("Run finished",
		zap.String("run_id", s.RunID),
		zap.String("state", string(s.State)),
		zap.Bool("dry_run", s.DryRun),
		zap.Duration("duration", s.Duration()),
		zap.Int("collections", t.Collections),
		zap.Int("synced", t.Synced),
		zap.Int("unchanged", t.Unchanged),
		zap.Int("failed", t.Failed),
		zap.Int("added", t.Added),
		zap.Int("removed", t.Removed),
		zap.Int("unmatched", t.Unmatched),
		zap.Int("ambiguous", t.Ambiguous),
		zap.Int("forwarded", s.Forwarded),
	)
	for _, c := range s.Collections {
		if c.Status.Failed() {
			logg.Warn("Collection failed",
				zap.String("library", c.Library),
				zap.String("collection", c.Collection),
				zap.String("status", string(c.Status)),
				zap.String("error", c.Error),
			)
		}
	}
}
