package reconcile

import (
	"context"
	"errors"
	"time"
)

// RunState is the lifecycle stage of a run.
type RunState string

const (
	StateInit           RunState = "init"
	StateSnapshotLoaded RunState = "snapshot_loaded"
	StateMatched        RunState = "matched"
	StateDiffed         RunState = "diffed"
	StateApplied        RunState = "applied"
	StateReported       RunState = "reported"
	StateFailed         RunState = "failed"
)

// CollectionStatus is the outcome of one collection within a run.
type CollectionStatus string

const (
	// StatusSynced means a non-empty diff was applied.
	StatusSynced CollectionStatus = "synced"
	// StatusUnchanged means the membership already matched.
	StatusUnchanged CollectionStatus = "unchanged"
	// StatusDryRun means a non-empty diff was computed but not applied.
	StatusDryRun CollectionStatus = "dry_run"
	// StatusMutationFailed means the diff could not be applied.
	StatusMutationFailed CollectionStatus = "mutation_failed"
	// StatusSourceFailed means the desired items could not be loaded.
	StatusSourceFailed CollectionStatus = "source_failed"
	// StatusMembershipFailed means the current membership could not be loaded.
	StatusMembershipFailed CollectionStatus = "membership_failed"
	// StatusCancelled means the run was cancelled before the collection was processed.
	StatusCancelled CollectionStatus = "cancelled"
)

// Failed reports whether the status is a failure.
func (s CollectionStatus) Failed() bool {
	switch s {
	case StatusMutationFailed, StatusSourceFailed, StatusMembershipFailed:
		return true
	}
	return false
}

// ItemOutcome pairs a desired item with its match result.
type ItemOutcome struct {
	Item   DesiredItem `json:"item"`
	Result MatchResult `json:"result"`
}

// CollectionReport is the per-collection part of a run summary.
type CollectionReport struct {
	Library    string           `json:"library"`
	Collection string           `json:"collection"`
	Status     CollectionStatus `json:"status"`

	Desired   int `json:"desired"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Ambiguous int `json:"ambiguous"`

	// Diff is the planned change. Added and Removed count what was applied.
	Diff    Diff `json:"diff"`
	Added   int  `json:"added"`
	Removed int  `json:"removed"`

	Items    []ItemOutcome `json:"items,omitempty"`
	Error    string        `json:"error,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// UnmatchedItem is a desired item with no library entry.
type UnmatchedItem struct {
	Library    string          `json:"library"`
	Collection string          `json:"collection"`
	Item       DesiredItem     `json:"item"`
	Reason     UnmatchedReason `json:"reason"`
	Candidates []string        `json:"candidates,omitempty"`
}

// Totals aggregates the collection reports.
type Totals struct {
	Collections int `json:"collections"`
	Synced      int `json:"synced"`
	Unchanged   int `json:"unchanged"`
	Failed      int `json:"failed"`
	Added       int `json:"added"`
	Removed     int `json:"removed"`
	Matched     int `json:"matched"`
	Unmatched   int `json:"unmatched"`
	Ambiguous   int `json:"ambiguous"`
}

// RunSummary is the structured result of a run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger,omitempty"`
	Scheduled  bool      `json:"scheduled"`
	DryRun     bool      `json:"dry_run"`
	State      RunState  `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
	Cancelled  bool      `json:"cancelled,omitempty"`

	Libraries   []string           `json:"libraries"`
	Collections []CollectionReport `json:"collections"`
	Unmatched   []UnmatchedItem    `json:"unmatched,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`

	// Forwarded is the number of acquisition requests handed to the forwarder.
	Forwarded    int    `json:"forwarded"`
	ForwardError string `json:"forward_error,omitempty"`

	Cache  map[string]CacheStats `json:"cache,omitempty"`
	Totals Totals                `json:"totals"`
}

// Duration returns the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Failed reports whether the run aborted before any collection was processed.
func (s *RunSummary) Failed() bool {
	return s.State == StateFailed
}

// Collection returns the report for a collection, if present.
func (s *RunSummary) Collection(library, collection string) (CollectionReport, bool) {
	for _, c := range s.Collections {
		if c.Library == library && c.Collection == collection {
			return c, true
		}
	}
	return CollectionReport{}, false
}

func (s *RunSummary) computeTotals() {
	t := Totals{Collections: len(s.Collections)}
	for _, c := range s.Collections {
		switch {
		case c.Status == StatusSynced:
			t.Synced++
		case c.Status == StatusUnchanged:
			t.Unchanged++
		case c.Status.Failed():
			t.Failed++
		}
		t.Added += c.Added
		t.Removed += c.Removed
		t.Matched += c.Matched
		t.Unmatched += c.Unmatched
		t.Ambiguous += c.Ambiguous
	}
	s.Totals = t
}

// RunStart is sent to RunStartReporter implementations when a run begins.
type RunStart struct {
	RunID     string    `json:"run_id"`
	Libraries []string  `json:"libraries"`
	Trigger   string    `json:"trigger,omitempty"`
	Scheduled bool      `json:"scheduled"`
	DryRun    bool      `json:"dry_run"`
	StartedAt time.Time `json:"started_at"`
}

type multiReporter []RunReporter

// MultiReporter fans a summary out to several reporters. Nil reporters are skipped.
// Every reporter is called even when an earlier one fails.
func MultiReporter(reporters ...RunReporter) RunReporter {
	out := make(multiReporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiReporter) Report(ctx context.Context, summary *RunSummary) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiReporter) ReportStart(ctx context.Context, start RunStart) error {
	var errs []error
	for _, r := range m {
		if sr, ok := r.(RunStartReporter); ok {
			if err := sr.ReportStart(ctx, start); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
