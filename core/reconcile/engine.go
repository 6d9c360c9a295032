package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"collection-manager/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the parallel library and collection fetches.
const DefaultConcurrency = 4

// Dependencies are the collaborators of an Engine.
type Dependencies struct {
	// Library lists library snapshots. Required.
	Library LibraryReader

	// Collections reads and mutates membership. Required.
	// It may also implement MetadataUpdater.
	Collections CollectionStore

	// Source produces desired items. Required.
	Source DesiredItemSource

	// Forwarder receives unmatched items of collections with AcquireMissing. Optional.
	Forwarder AcquisitionForwarder

	// Reporter receives the run summary. Optional.
	// It may also implement RunStartReporter.
	Reporter RunReporter
}

// Options configures an Engine.
type Options struct {
	// Match tunes the matcher.
	Match MatchConfig

	// Concurrency bounds the parallel fetches. Zero selects DefaultConcurrency.
	Concurrency int

	// Locker guards against runs in other processes. Optional.
	Locker Locker
}

// Engine orchestrates reconciliation runs. At most one run executes at a time.
type Engine struct {
	deps    Dependencies
	opts    Options
	log     *zap.Logger
	mu      sync.Mutex
	running atomic.Bool
	now     func() time.Time
	newID   func() string
}

// NewEngine validates the dependencies and creates an engine.
func NewEngine(deps Dependencies, opts Options, log *zap.Logger) (*Engine, error) {
	if deps.Library == nil {
		return nil, errors.New("library reader is required")
	}
	if deps.Collections == nil {
		return nil, errors.New("collection store is required")
	}
	if deps.Source == nil {
		return nil, errors.New("desired item source is required")
	}
	opts.Match = opts.Match.withDefaults()
	if err := opts.Match.Validate(); err != nil {
		return nil, fmt.Errorf("invalid match config: %w", err)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		deps:  deps,
		opts:  opts,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Running reports whether a run is in progress in this process.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// librarySnapshot bundles the per-run index, cache and matcher of one library.
type librarySnapshot struct {
	target  LibraryTarget
	index   *Index
	matcher *Matcher
}

// collectionWork carries the fetched inputs of one collection.
type collectionWork struct {
	snapshot      *librarySnapshot
	target        CollectionTarget
	desired       []DesiredItem
	membership    Membership
	sourceErr     error
	membershipErr error
}

// Run executes one reconciliation run.
//
// Every library snapshot is loaded before any collection is touched; a failed
// listing aborts the run with ErrSnapshotUnavailable and mutates nothing. After
// that, every collection is matched, then diffed, then applied, and the run state
// follows those phases. Per-collection failures are recorded in the summary and
// the run goes on. Cancellation is honoured between applies; a diff that is
// being applied completes.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*RunSummary, error) {
	if !e.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.mu.Unlock()

	if e.opts.Locker != nil {
		ok, err := e.opts.Locker.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := e.opts.Locker.Unlock(); err != nil {
				e.log.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	e.running.Store(true)
	defer e.running.Store(false)

	runID := req.RunID
	if runID == "" {
		runID = e.newID()
	}
	summary := &RunSummary{
		RunID:       runID,
		Trigger:     req.Trigger,
		Scheduled:   req.Scheduled,
		DryRun:      req.DryRun,
		State:       StateInit,
		StartedAt:   e.now(),
		Libraries:   make([]string, 0, len(req.Libraries)),
		Collections: []CollectionReport{},
		Cache:       make(map[string]CacheStats),
	}
	for _, lib := range req.Libraries {
		summary.Libraries = append(summary.Libraries, lib.Name)
	}

	log := logger.WithRun(e.log, summary.RunID)
	log.Info("Run started",
		zap.Strings("libraries", summary.Libraries),
		zap.Bool("dry_run", req.DryRun),
		zap.Bool("scheduled", req.Scheduled))
	e.reportStart(ctx, summary, log)

	snapshots, err := e.loadSnapshots(ctx, req.Libraries, log)
	if err != nil {
		e.transition(summary, StateFailed, log)
		summary.Error = err.Error()
		summary.FinishedAt = e.now()
		summary.computeTotals()
		log.Error("Run failed", zap.Error(err))
		e.report(ctx, summary, log)
		return summary, err
	}
	e.transition(summary, StateSnapshotLoaded, log)

	work := e.fetchCollections(ctx, snapshots)
	reports := make([]CollectionReport, len(work))
	requests := make([][]AcquisitionRequest, len(work))

	for i := range work {
		reports[i], requests[i] = e.matchCollection(&work[i], summary, log)
	}
	e.transition(summary, StateMatched, log)

	for i := range work {
		e.diffCollection(&work[i], &reports[i], req.DryRun, log)
	}
	e.transition(summary, StateDiffed, log)

	var forward []AcquisitionRequest
	skipped := 0
	for i := range work {
		r := &reports[i]
		if ctx.Err() != nil {
			summary.Cancelled = true
			if r.Status == statusPending {
				r.Status = StatusCancelled
				skipped++
			}
			continue
		}
		if r.Status == statusPending {
			e.applyCollection(ctx, &work[i], r, summary, log)
		}
		forward = append(forward, requests[i]...)
	}
	if summary.Cancelled {
		log.Warn("Run cancelled", zap.Int("skipped_collections", skipped))
	}
	summary.Collections = append(summary.Collections, reports...)
	e.transition(summary, StateApplied, log)

	if !req.DryRun && e.deps.Forwarder != nil && len(forward) > 0 {
		forward = dedupeRequests(forward)
		if err := e.deps.Forwarder.Request(context.WithoutCancel(ctx), forward); err != nil {
			summary.ForwardError = err.Error()
			log.Warn("Failed to forward unmatched items", zap.Int("count", len(forward)), zap.Error(err))
		} else {
			summary.Forwarded = len(forward)
			log.Info("Forwarded unmatched items", zap.Int("count", len(forward)))
		}
	}

	for _, snap := range snapshots {
		summary.Cache[snap.target.Name] = snap.matcher.Cache().Stats()
	}
	summary.FinishedAt = e.now()
	summary.computeTotals()
	e.report(ctx, summary, log)
	e.transition(summary, StateReported, log)

	log.Info("Run finished",
		zap.Int("collections", summary.Totals.Collections),
		zap.Int("synced", summary.Totals.Synced),
		zap.Int("unchanged", summary.Totals.Unchanged),
		zap.Int("failed", summary.Totals.Failed),
		zap.Int("added", summary.Totals.Added),
		zap.Int("removed", summary.Totals.Removed),
		zap.Int("unmatched", summary.Totals.Unmatched),
		zap.Duration("duration", summary.Duration()))

	if summary.Cancelled {
		return summary, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return summary, nil
}

// loadSnapshots lists every library concurrently and builds a fresh index, cache
// and matcher for each. Any failure fails the whole load.
func (e *Engine) loadSnapshots(ctx context.Context, libraries []LibraryTarget, log *zap.Logger) ([]*librarySnapshot, error) {
	snapshots := make([]*librarySnapshot, len(libraries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, lib := range libraries {
		g.Go(func() error {
			items, err := e.deps.Library.ListLibrary(gctx, lib.Name)
			if err != nil {
				return &SnapshotError{Library: lib.Name, Err: err}
			}
			index := NewIndex(items, log.With(zap.String("library", lib.Name)))
			snapshots[i] = &librarySnapshot{
				target:  lib,
				index:   index,
				matcher: NewMatcher(index, NewMatchCache(), e.opts.Match),
			}
			log.Debug("Library snapshot loaded",
				zap.String("library", lib.Name),
				zap.Int("items", index.Len()),
				zap.Int("collisions", index.Collisions()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// fetchCollections loads desired items and membership for every collection in
// parallel. Errors are kept per collection.
func (e *Engine) fetchCollections(ctx context.Context, snapshots []*librarySnapshot) []collectionWork {
	var work []collectionWork
	for _, snap := range snapshots {
		for _, target := range snap.target.Collections {
			work = append(work, collectionWork{snapshot: snap, target: target})
		}
	}

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i := range work {
		w := &work[i]
		g.Go(func() error {
			library := w.snapshot.target.Name
			w.desired, w.sourceErr = e.deps.Source.DesiredItems(ctx, library, w.target)
			w.membership, w.membershipErr = e.deps.Collections.GetMembership(ctx, library, w.target.Name)
			return nil
		})
	}
	_ = g.Wait()
	return work
}

// statusPending marks a collection whose non-empty diff still has to be applied.
const statusPending CollectionStatus = "pending"

// matchCollection resolves the desired items of one collection and collects the
// acquisition requests for its missing items.
func (e *Engine) matchCollection(w *collectionWork, summary *RunSummary, log *zap.Logger) (CollectionReport, []AcquisitionRequest) {
	library := w.snapshot.target.Name
	report := CollectionReport{Library: library, Collection: w.target.Name}
	clog := log.With(zap.String("library", library), zap.String("collection", w.target.Name))

	if w.sourceErr != nil {
		err := &CollectionError{Library: library, Collection: w.target.Name, Op: opSource, Err: w.sourceErr}
		report.Status = StatusSourceFailed
		report.Error = err.Error()
		clog.Warn("Failed to load desired items", zap.Error(w.sourceErr))
		return report, nil
	}

	desired := append([]DesiredItem(nil), w.desired...)
	sort.SliceStable(desired, func(i, j int) bool { return desired[i].SourceRank < desired[j].SourceRank })

	var requests []AcquisitionRequest
	report.Desired = len(desired)
	report.Items = make([]ItemOutcome, 0, len(desired))
	for _, item := range desired {
		res := w.snapshot.matcher.Match(item)
		report.Items = append(report.Items, ItemOutcome{Item: item, Result: res})
		if res.Matched {
			report.Matched++
			continue
		}
		report.Unmatched++
		summary.Unmatched = append(summary.Unmatched, UnmatchedItem{
			Library:    library,
			Collection: w.target.Name,
			Item:       item,
			Reason:     res.Reason,
			Candidates: res.Candidates,
		})
		if res.Reason == ReasonAmbiguous {
			report.Ambiguous++
			msg := fmt.Sprintf("%s/%s: %q (%d) is ambiguous between %v", library, w.target.Name, item.Title, item.Year, res.Candidates)
			report.Warnings = append(report.Warnings, msg)
			summary.Warnings = append(summary.Warnings, msg)
			clog.Warn("Ambiguous match", zap.String("title", item.Title), zap.Int("year", item.Year), zap.Strings("candidates", res.Candidates))
			continue
		}
		if w.target.AcquireMissing {
			requests = append(requests, AcquisitionRequest{
				Item:       item,
				MediaType:  w.snapshot.target.MediaType,
				Library:    library,
				Collection: w.target.Name,
				Tags:       w.target.Tags,
			})
		}
	}
	return report, requests
}

// diffCollection computes the diff of a matched collection. A non-empty diff
// outside a dry run leaves the report pending.
func (e *Engine) diffCollection(w *collectionWork, report *CollectionReport, dryRun bool, log *zap.Logger) {
	if report.Status != "" {
		return
	}
	library := w.snapshot.target.Name
	clog := log.With(zap.String("library", library), zap.String("collection", w.target.Name))

	if w.membershipErr != nil {
		err := &CollectionError{Library: library, Collection: w.target.Name, Op: opMembership, Err: w.membershipErr}
		report.Status = StatusMembershipFailed
		report.Error = err.Error()
		clog.Warn("Failed to load collection membership", zap.Error(w.membershipErr))
		return
	}

	report.Diff = ComputeDiff(MatchedEntries(report.Items), w.membership)
	switch {
	case report.Diff.Empty():
		report.Status = StatusUnchanged
		clog.Debug("Collection unchanged", zap.Int("matched", report.Matched))
	case dryRun:
		report.Status = StatusDryRun
		clog.Info("Dry run diff",
			zap.Int("to_add", len(report.Diff.ToAdd)),
			zap.Int("to_remove", len(report.Diff.ToRemove)))
	default:
		report.Status = statusPending
	}
}

// applyCollection applies a pending diff and pushes the collection metadata.
func (e *Engine) applyCollection(ctx context.Context, w *collectionWork, report *CollectionReport, summary *RunSummary, log *zap.Logger) {
	library := w.snapshot.target.Name
	clog := log.With(zap.String("library", library), zap.String("collection", w.target.Name))

	// The batch completes even if the run is cancelled meanwhile.
	applyCtx := context.WithoutCancel(ctx)
	if err := e.deps.Collections.ApplyDiff(applyCtx, library, w.target.Name, report.Diff); err != nil {
		cerr := &CollectionError{Library: library, Collection: w.target.Name, Op: opApply, Err: err}
		report.Status = StatusMutationFailed
		report.Error = cerr.Error()
		var partial *PartialFailureError
		if errors.As(err, &partial) {
			clog.Error("Collection partially updated", zap.String("detail", partial.Detail), zap.Error(err))
		} else {
			clog.Error("Failed to apply collection diff", zap.Error(err))
		}
		return
	}
	report.Status = StatusSynced
	report.Added = len(report.Diff.ToAdd)
	report.Removed = len(report.Diff.ToRemove)
	clog.Info("Collection synced", zap.Int("added", report.Added), zap.Int("removed", report.Removed))

	if updater, ok := e.deps.Collections.(MetadataUpdater); ok && !w.target.Metadata.IsZero() {
		if err := updater.UpdateMetadata(applyCtx, library, w.target.Name, w.target.Metadata); err != nil {
			msg := fmt.Sprintf("%s/%s: metadata update failed: %v", library, w.target.Name, err)
			report.Warnings = append(report.Warnings, msg)
			summary.Warnings = append(summary.Warnings, msg)
			clog.Warn("Failed to update collection metadata", zap.Error(err))
		}
	}
}

func (e *Engine) transition(summary *RunSummary, state RunState, log *zap.Logger) {
	log.Debug("Run state", zap.String("from", string(summary.State)), zap.String("to", string(state)))
	summary.State = state
}

func (e *Engine) reportStart(ctx context.Context, summary *RunSummary, log *zap.Logger) {
	sr, ok := e.deps.Reporter.(RunStartReporter)
	if !ok {
		return
	}
	start := RunStart{
		RunID:     summary.RunID,
		Libraries: summary.Libraries,
		Trigger:   summary.Trigger,
		Scheduled: summary.Scheduled,
		DryRun:    summary.DryRun,
		StartedAt: summary.StartedAt,
	}
	if err := sr.ReportStart(ctx, start); err != nil {
		log.Warn("Failed to report run start", zap.Error(err))
	}
}

func (e *Engine) report(ctx context.Context, summary *RunSummary, log *zap.Logger) {
	if e.deps.Reporter == nil {
		return
	}
	if err := e.deps.Reporter.Report(context.WithoutCancel(ctx), summary); err != nil {
		log.Warn("Failed to report run", zap.Error(err))
	}
}

// dedupeRequests keeps the first request per primary identifier and library.
func dedupeRequests(requests []AcquisitionRequest) []AcquisitionRequest {
	seen := make(map[string]struct{}, len(requests))
	out := make([]AcquisitionRequest, 0, len(requests))
	for _, r := range requests {
		key := r.Library + "|" + requestKey(r.Item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func requestKey(item DesiredItem) string {
	for _, ns := range DefaultIDPriority {
		if id, ok := item.ExternalID(ns); ok {
			return externalKey(ns, id)
		}
	}
	return titleYearKey(NormalizeTitle(item.Title), item.Year)
}
