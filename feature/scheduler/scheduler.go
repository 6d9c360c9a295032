package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the daemon schedule.
type Config struct {
	Enabled  bool   `mapstructure:"enabled" default:"true"`
	RunAt    string `mapstructure:"run_at" default:"03:00"`
	Timezone string `mapstructure:"timezone" default:"UTC"`
}

// ParseRunAt parses an HH:MM time of day.
func ParseRunAt(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid run_at %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// Location loads the configured timezone. Empty means UTC.
func (c Config) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// TriggerFunc starts a scheduled run.
type TriggerFunc func(ctx context.Context) error

// Scheduler calls a trigger every day at a fixed local time.
type Scheduler struct {
	hour, minute int
	loc          *time.Location
	trigger      TriggerFunc
	logger       *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// New creates a Scheduler.
func New(cfg Config, trigger TriggerFunc, logger *zap.Logger) (*Scheduler, error) {
	hour, minute, err := ParseRunAt(cfg.RunAt)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		hour:    hour,
		minute:  minute,
		loc:     loc,
		trigger: trigger,
		logger:  logger,
		now:     time.Now,
		after:   time.After,
	}, nil
}

// Next returns the first run time strictly after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}

// Run blocks until ctx is cancelled, calling the trigger at every run time.
// Trigger errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := s.Next(s.now())
		s.logger.Info("Next scheduled run", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(next.Sub(s.now())):
		}

		s.logger.Info("Starting scheduled run")
		if err := s.trigger(ctx); err != nil {
			s.logger.Error("Scheduled run failed", zap.Error(err))
		}
	}
}
