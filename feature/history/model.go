package history

import (
	"encoding/json"
	"fmt"
	"time"

	"collection-manager/core/reconcile"
)

// RunRecord is one stored run.
type RunRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Trigger     string    `gorm:"column:run_trigger;size:32" json:"trigger"`
	Scheduled   bool      `json:"scheduled"`
	DryRun      bool      `json:"dry_run"`
	State       string    `gorm:"size:32;index" json:"state"`
	StartedAt   time.Time `gorm:"index" json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMS  int64     `json:"duration_ms"`
	Collections int       `json:"collections"`
	Synced      int       `json:"synced"`
	Failed      int       `json:"failed"`
	Added       int       `json:"added"`
	Removed     int       `json:"removed"`
	Unmatched   int       `json:"unmatched"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	Summary     string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name used by RunRecord.
func (RunRecord) TableName() string {
	return "run_records"
}

// columns are checked after migration so a half-migrated table fails early.
var columns = []string{
	"id", "run_trigger", "scheduled", "dry_run", "state", "started_at", "finished_at",
	"duration_ms", "collections", "synced", "failed", "added", "removed", "unmatched",
	"error", "summary", "created_at",
}

func newRecord(s *reconcile.RunSummary) (*RunRecord, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return &RunRecord{
		ID:          s.RunID,
		Trigger:     s.Trigger,
		Scheduled:   s.Scheduled,
		DryRun:      s.DryRun,
		State:       string(s.State),
		StartedAt:   s.StartedAt.UTC(),
		FinishedAt:  s.FinishedAt.UTC(),
		DurationMS:  s.Duration().Milliseconds(),
		Collections: s.Totals.Collections,
		Synced:      s.Totals.Synced,
		Failed:      s.Totals.Failed,
		Added:       s.Totals.Added,
		Removed:     s.Totals.Removed,
		Unmatched:   s.Totals.Unmatched,
		Error:       s.Error,
		Summary:     string(data),
	}, nil
}

// DecodeSummary returns the full stored summary.
func (r *RunRecord) DecodeSummary() (*reconcile.RunSummary, error) {
	var s reconcile.RunSummary
	if err := json.Unmarshal([]byte(r.Summary), &s); err != nil {
		return nil, fmt.Errorf("decode summary of run %s: %w", r.ID, err)
	}
	return &s, nil
}
