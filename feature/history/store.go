package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collection-manager/core/database"
	"collection-manager/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Store persists run summaries.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore migrates the schema and returns a Store.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("history store requires a database")
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run history: %w", err)
	}
	missing, err := database.MissingColumns(db, RunRecord{}.TableName(), columns)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("table %s is missing columns: %s", RunRecord{}.TableName(), strings.Join(missing, ", "))
	}
	return newStore(db, logger), nil
}

func newStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Report implements reconcile.RunReporter.
func (s *Store) Report(ctx context.Context, summary *reconcile.RunSummary) error {
	rec, err := newRecord(summary)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to store run %s: %w", summary.RunID, err)
	}
	s.logger.Debug("Stored run summary", zap.String("run_id", summary.RunID))
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	Limit  int
	Offset int
	// State keeps runs in the given state when set.
	State string
	// Since keeps runs started at or after the time when set.
	Since time.Time
}

// List returns runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]RunRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	q := s.db.WithContext(ctx).Model(&RunRecord{}).Omit("summary")
	if opts.State != "" {
		q = q.Where("state = ?", opts.State)
	}
	if !opts.Since.IsZero() {
		q = q.Where("started_at >= ?", opts.Since.UTC())
	}

	var records []RunRecord
	if err := q.Order("started_at DESC").Limit(limit).Offset(max(opts.Offset, 0)).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return records, nil
}

// Get returns one run with its full summary.
func (s *Store) Get(ctx context.Context, id string) (*RunRecord, error) {
	var rec RunRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &rec, nil
}

// Prune deletes runs started before the cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("started_at < ?", before.UTC()).Delete(&RunRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
