package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hook struct {
	mu       sync.Mutex
	payloads map[string][]payload
	status   int
}

func newHook(t *testing.T) (*hook, string) {
	h := &hook{payloads: map[string][]payload{}, status: http.StatusNoContent}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		var p payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		h.payloads[r.URL.Path] = append(h.payloads[r.URL.Path], p)
		w.WriteHeader(h.status)
	}))
	t.Cleanup(srv.Close)
	return h, srv.URL
}

func testSummary() *reconcile.RunSummary {
	start := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	s := &reconcile.RunSummary{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(95 * time.Second),
		State:      reconcile.StateReported,
		Collections: []reconcile.CollectionReport{
			{
				Library: "Films", Collection: "Trending", Status: reconcile.StatusSynced,
				Diff:  reconcile.Diff{ToAdd: []string{"e1"}, ToRemove: []string{"e9"}},
				Added: 1, Removed: 1,
				Items: []reconcile.ItemOutcome{{Item: reconcile.DesiredItem{Title: "Dune"}, Result: reconcile.Matched("e1", reconcile.MatchedByExactID)}},
			},
			{Library: "Films", Collection: "Same", Status: reconcile.StatusUnchanged},
			{Library: "Films", Collection: "Broken", Status: reconcile.StatusMutationFailed, Error: "boom"},
		},
		Totals: reconcile.Totals{Collections: 3, Synced: 1, Unchanged: 1, Failed: 1, Added: 1, Removed: 1},
	}
	return s
}

// TestDiscord_Report tests routing of events to their webhooks.
func TestDiscord_Report(t *testing.T) {
	h, base := newHook(t)
	d, err := NewDiscord(Config{
		WebhookURL:     base + "/default",
		WebhookChanges: base + "/changes",
		Username:       "cm",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, d.Report(t.Context(), testSummary()))

	def := h.payloads["/default"]
	require.Len(t, def, 2)
	end := def[0].Embeds[0]
	assert.Equal(t, "Collection Update Completed", end.Title)
	assert.Equal(t, colorRed, end.Color)
	assert.Equal(t, "1m 35s", end.Fields[0].Value)
	assert.Equal(t, "Error: Films / Broken", def[1].Embeds[0].Title)
	assert.Equal(t, "cm", def[0].Username)

	changes := h.payloads["/changes"]
	require.Len(t, changes, 1)
	assert.Equal(t, "Collection Updated: Trending", changes[0].Embeds[0].Title)
	assert.Equal(t, "+ Dune", changes[0].Embeds[0].Fields[0].Value)
	assert.Equal(t, "- e9", changes[0].Embeds[0].Fields[1].Value)
}

// TestDiscord_ReportStart tests the run start notification.
func TestDiscord_ReportStart(t *testing.T) {
	h, base := newHook(t)
	d, err := NewDiscord(Config{WebhookRunStart: base + "/start"}, nil)
	require.NoError(t, err)

	require.NoError(t, d.ReportStart(t.Context(), reconcile.RunStart{Libraries: []string{"Films", "Series"}, Scheduled: true}))
	got := h.payloads["/start"]
	require.Len(t, got, 1)
	assert.Equal(t, "Processing 2 libraries", got[0].Embeds[0].Description)
	assert.Equal(t, "- Films\n- Series", got[0].Embeds[0].Fields[0].Value)
	assert.Equal(t, "Scheduled", got[0].Embeds[0].Fields[1].Value)

	// Run end has no webhook here and is dropped.
	require.NoError(t, d.Report(t.Context(), &reconcile.RunSummary{}))
	assert.Len(t, h.payloads, 1)
}

// TestDiscord_ReportFailure tests that webhook failures are returned.
func TestDiscord_ReportFailure(t *testing.T) {
	h, base := newHook(t)
	h.status = http.StatusBadRequest
	d, err := NewDiscord(Config{WebhookURL: base}, nil, httpclient.WithRetries(1))
	require.NoError(t, err)

	err = d.Report(t.Context(), testSummary())
	assert.True(t, httpclient.IsStatus(err, http.StatusBadRequest))
}

// TestList tests truncation of long lists.
func TestList(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	out := list("+", ids, func(s string) string { return s })
	assert.Contains(t, out, "+ 9\n... and 2 more")
	assert.NotContains(t, out, "+ 10")
	assert.Equal(t, "5s", formatDuration(5*time.Second))
}
