package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"collection-manager/core/reconcile"
	"collection-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archive writes run reports to a bucket.
type Archive struct {
	client storage.Client
	cfg    storage.Config
	logger *zap.Logger
}

// New creates an Archive.
func New(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{client: client, cfg: cfg, logger: logger}
}

// Key returns the object name of a run report.
func (a *Archive) Key(summary *reconcile.RunSummary) string {
	started := summary.StartedAt.UTC()
	return storage.ObjectKey(a.cfg.Prefix, "reports", started.Format("2006"), started.Format("01"), summary.RunID+".json")
}

// Report implements reconcile.RunReporter.
func (a *Archive) Report(ctx context.Context, summary *reconcile.RunSummary) error {
	if err := storage.EnsureBucket(ctx, a.client, a.cfg.Bucket, a.cfg.Region); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run report: %w", err)
	}
	key := a.Key(summary)
	_, err = a.client.PutObject(ctx, a.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload run report %s: %w", key, err)
	}
	a.logger.Debug("Archived run report", zap.String("bucket", a.cfg.Bucket), zap.String("key", key))
	return nil
}

// Load reads an archived report by object key.
func (a *Archive) Load(ctx context.Context, key string) (*reconcile.RunSummary, error) {
	obj, err := a.client.GetObject(ctx, a.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var s reconcile.RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &s, nil
}

// Prune removes reports last modified before the cutoff. Removal errors are
// joined and do not stop the sweep.
func (a *Archive) Prune(ctx context.Context, before time.Time) (int, error) {
	prefix := storage.ObjectKey(a.cfg.Prefix, "reports") + "/"
	objects := a.client.ListObjects(ctx, a.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})

	var errs []error
	removed := 0
	for obj := range objects {
		if obj.Err != nil {
			errs = append(errs, obj.Err)
			continue
		}
		if !strings.HasSuffix(obj.Key, ".json") || !obj.LastModified.Before(before) {
			continue
		}
		if err := a.client.RemoveObject(ctx, a.cfg.Bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", obj.Key, err))
			continue
		}
		removed++
	}
	if removed > 0 {
		a.logger.Info("Pruned archived reports", zap.Int("removed", removed))
	}
	return removed, errors.Join(errs...)
}
