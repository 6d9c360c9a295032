package runs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"collection-manager/core/reconcile"
	"collection-manager/feature/collections"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNothingToRun is returned when the selection matches no collection.
var ErrNothingToRun = errors.New("no collection selected")

// Engine is the part of reconcile.Engine the runner drives.
type Engine interface {
	Run(ctx context.Context, req reconcile.RunRequest) (*reconcile.RunSummary, error)
}

// Trigger describes a run request.
type Trigger struct {
	Libraries   []string `json:"libraries"`
	Collections []string `json:"collections"`
	DryRun      bool     `json:"dry_run"`
	// Scheduled keeps only the collections due today.
	Scheduled bool   `json:"scheduled"`
	Source    string `json:"-"`
}

// RunInfo describes the run in progress.
type RunInfo struct {
	RunID     string    `json:"run_id"`
	Trigger   string    `json:"trigger"`
	Scheduled bool      `json:"scheduled"`
	DryRun    bool      `json:"dry_run"`
	StartedAt time.Time `json:"started_at"`
}

// Status is the runner state reported by the API.
type Status struct {
	Running bool                  `json:"running"`
	Current *RunInfo              `json:"current,omitempty"`
	Last    *reconcile.RunSummary `json:"last,omitempty"`
	LastErr string                `json:"last_error,omitempty"`
}

// Runner serializes runs and remembers the last result.
type Runner struct {
	engine Engine
	defs   *collections.File
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	busy atomic.Bool
	wg   sync.WaitGroup

	mu      sync.Mutex
	current *RunInfo
	last    *reconcile.RunSummary
	lastErr error
}

// NewRunner creates a Runner. Scheduled runs decide which collections are due
// by the calendar day in loc, the scheduler's timezone; nil means local time.
func NewRunner(engine Engine, defs *collections.File, loc *time.Location, logger *zap.Logger) *Runner {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{engine: engine, defs: defs, loc: loc, logger: logger, now: time.Now, newID: uuid.NewString}
}

// Plan builds the run request for a trigger.
func (r *Runner) Plan(t Trigger) (reconcile.RunRequest, error) {
	libs := r.defs.Select(t.Libraries, t.Collections)
	if t.Scheduled {
		libs = collections.Due(libs, r.now().In(r.loc))
	}
	if len(libs) == 0 {
		return reconcile.RunRequest{}, ErrNothingToRun
	}
	return reconcile.RunRequest{
		Libraries: collections.Targets(libs),
		DryRun:    t.DryRun,
		Scheduled: t.Scheduled,
		Trigger:   t.Source,
	}, nil
}

// Run executes a run and waits for it.
func (r *Runner) Run(ctx context.Context, t Trigger) (*reconcile.RunSummary, error) {
	req, err := r.Plan(t)
	if err != nil {
		return nil, err
	}
	if !r.busy.CompareAndSwap(false, true) {
		return nil, reconcile.ErrRunInProgress
	}
	req.RunID = r.newID()
	return r.execute(ctx, req)
}

// Start launches a run in the background and returns its id.
func (r *Runner) Start(ctx context.Context, t Trigger) (string, error) {
	req, err := r.Plan(t)
	if err != nil {
		return "", err
	}
	if !r.busy.CompareAndSwap(false, true) {
		return "", reconcile.ErrRunInProgress
	}
	req.RunID = r.newID()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if _, err := r.execute(ctx, req); err != nil {
			r.logger.Error("Background run failed", zap.String("run_id", req.RunID), zap.Error(err))
		}
	}()
	return req.RunID, nil
}

func (r *Runner) execute(ctx context.Context, req reconcile.RunRequest) (*reconcile.RunSummary, error) {
	defer r.busy.Store(false)

	r.mu.Lock()
	r.current = &RunInfo{
		RunID:     req.RunID,
		Trigger:   req.Trigger,
		Scheduled: req.Scheduled,
		DryRun:    req.DryRun,
		StartedAt: r.now(),
	}
	r.mu.Unlock()

	summary, err := r.engine.Run(ctx, req)

	r.mu.Lock()
	r.current = nil
	if summary != nil {
		r.last = summary
	}
	r.lastErr = err
	r.mu.Unlock()
	return summary, err
}

// Wait blocks until background runs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Status returns the current state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Status{Running: r.busy.Load(), Current: r.current, Last: r.last}
	if r.lastErr != nil {
		s.LastErr = r.lastErr.Error()
	}
	return s
}

// Last returns the last finished run, if any.
func (r *Runner) Last() *reconcile.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
