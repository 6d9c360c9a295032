package archive_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"collection-manager/core/reconcile"
	"collection-manager/core/storage"
	"collection-manager/core/storage/mocks"
	"collection-manager/feature/archive"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var cfg = storage.Config{Bucket: "cm", Prefix: "runs", Region: "eu"}

func testSummary() *reconcile.RunSummary {
	return &reconcile.RunSummary{
		RunID:     "abc",
		StartedAt: time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC),
		State:     reconcile.StateReported,
		Totals:    reconcile.Totals{Added: 2},
	}
}

// TestArchive_Report tests bucket creation and the uploaded object.
func TestArchive_Report(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "cm").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "cm", minio.MakeBucketOptions{Region: "eu"}).Return(nil)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "cm", "runs/reports/2026/03/abc.json", mock.Anything, mock.Anything,
		minio.PutObjectOptions{ContentType: "application/json"}).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	a := archive.New(client, cfg, nil)
	require.NoError(t, a.Report(t.Context(), testSummary()))

	var got reconcile.RunSummary
	require.NoError(t, json.Unmarshal(uploaded, &got))
	assert.Equal(t, "abc", got.RunID)
	assert.Equal(t, 2, got.Totals.Added)
	client.AssertExpectations(t)
}

// TestArchive_ReportErrors tests bucket and upload failures.
func TestArchive_ReportErrors(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "cm").Return(false, errors.New("offline")).Once()
	a := archive.New(client, cfg, nil)
	assert.ErrorContains(t, a.Report(t.Context(), testSummary()), "offline")

	client.On("BucketExists", mock.Anything, "cm").Return(true, nil)
	client.On("PutObject", mock.Anything, "cm", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))
	assert.ErrorContains(t, a.Report(t.Context(), testSummary()), "denied")
}

// TestArchive_Load tests reading a report back.
func TestArchive_Load(t *testing.T) {
	data, err := json.Marshal(testSummary())
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "cm", "runs/reports/2026/03/abc.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(data)), nil)

	a := archive.New(client, cfg, nil)
	s, err := a.Load(t.Context(), a.Key(testSummary()))
	require.NoError(t, err)
	assert.Equal(t, "abc", s.RunID)
}

// TestArchive_Prune tests removal of old reports.
func TestArchive_Prune(t *testing.T) {
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ch := make(chan minio.ObjectInfo, 4)
	ch <- minio.ObjectInfo{Key: "runs/reports/2026/01/old.json", LastModified: cutoff.AddDate(0, -4, 0)}
	ch <- minio.ObjectInfo{Key: "runs/reports/2026/02/fail.json", LastModified: cutoff.AddDate(0, -3, 0)}
	ch <- minio.ObjectInfo{Key: "runs/reports/2026/07/new.json", LastModified: cutoff.AddDate(0, 1, 0)}
	ch <- minio.ObjectInfo{Key: "runs/reports/notes.txt", LastModified: cutoff.AddDate(-1, 0, 0)}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "cm", minio.ListObjectsOptions{Prefix: "runs/reports/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))
	client.On("RemoveObject", mock.Anything, "cm", "runs/reports/2026/01/old.json", mock.Anything).Return(nil)
	client.On("RemoveObject", mock.Anything, "cm", "runs/reports/2026/02/fail.json", mock.Anything).Return(errors.New("locked"))

	removed, err := archive.New(client, cfg, nil).Prune(t.Context(), cutoff)
	assert.Equal(t, 1, removed)
	assert.ErrorContains(t, err, "locked")
	client.AssertNumberOfCalls(t, "RemoveObject", 2)
}
