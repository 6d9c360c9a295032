package arr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArr serves the v3 endpoints shared by Radarr and Sonarr.
type fakeArr struct {
	mu       sync.Mutex
	existing map[string]bool
	added    []map[string]any
	tags     []tag
}

func (f *fakeArr) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Header.Get("X-Api-Key") != "key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	enc := json.NewEncoder(w)
	switch r.Method + " " + r.URL.Path {
	case "GET /api/v3/qualityprofile":
		_ = enc.Encode([]qualityProfile{{ID: 1, Name: "Any"}, {ID: 4, Name: "HD-1080p"}})
	case "GET /api/v3/rootfolder":
		_ = enc.Encode([]rootFolder{{ID: 1, Path: "/data/other"}, {ID: 2, Path: "/data/movies"}})
	case "GET /api/v3/tag":
		_ = enc.Encode(f.tags)
	case "POST /api/v3/tag":
		var t tag
		_ = json.NewDecoder(r.Body).Decode(&t)
		t.ID = len(f.tags) + 10
		f.tags = append(f.tags, t)
		_ = enc.Encode(t)
	case "GET /api/v3/movie":
		if f.existing[q.Get("tmdbId")] {
			_ = enc.Encode([]map[string]any{{"id": 1}})
			return
		}
		_ = enc.Encode([]map[string]any{})
	case "GET /api/v3/movie/lookup/tmdb":
		_ = enc.Encode(map[string]any{"title": "Dune", "tmdbId": 438631})
	case "GET /api/v3/series":
		_ = enc.Encode([]map[string]any{})
	case "GET /api/v3/series/lookup":
		if q.Get("term") != "tvdb:81189" {
			_ = enc.Encode([]map[string]any{})
			return
		}
		_ = enc.Encode([]map[string]any{{"title": "Breaking Bad", "tvdbId": 81189}})
	case "POST /api/v3/movie", "POST /api/v3/series":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.added = append(f.added, body)
		w.WriteHeader(http.StatusCreated)
		_ = enc.Encode(body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFake(t *testing.T) (*fakeArr, Config) {
	f := &fakeArr{existing: map[string]bool{"603": true}, tags: []tag{{ID: 3, Label: "Trending"}}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, Config{URL: srv.URL, APIKey: "key", RootFolder: "/data/movies/4k", QualityProfile: "hd-1080p", DefaultTag: "cm"}
}

// TestRadarr_Add tests adding a movie with profile, folder and tag resolution.
func TestRadarr_Add(t *testing.T) {
	f, cfg := newFake(t)
	r, err := NewRadarr(cfg, nil, httpclient.WithRetries(1))
	require.NoError(t, err)

	added, err := r.Add(t.Context(), "438631", []string{"trending", "new"})
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, f.added, 1)

	body := f.added[0]
	assert.Equal(t, "/data/movies", body["rootFolderPath"])
	assert.EqualValues(t, 4, body["qualityProfileId"])
	assert.Equal(t, []any{float64(3), float64(11)}, body["tags"])
	assert.Equal(t, "Dune", body["title"])

	added, err = r.Add(t.Context(), "603", nil)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, f.added, 1)
}

// TestSonarr_Add tests adding a series and the default tag.
func TestSonarr_Add(t *testing.T) {
	f, cfg := newFake(t)
	s, err := NewSonarr(cfg, nil, httpclient.WithRetries(1))
	require.NoError(t, err)

	added, err := s.Add(t.Context(), "81189", nil)
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, f.added, 1)
	assert.Equal(t, "standard", f.added[0]["seriesType"])
	assert.Len(t, f.tags, 2)
	assert.Equal(t, "cm", f.tags[1].Label)

	_, err = s.Add(t.Context(), "1", nil)
	assert.Error(t, err)
}

// TestNewClient_NotConfigured tests missing settings.
func TestNewClient_NotConfigured(t *testing.T) {
	_, err := NewRadarr(Config{URL: "http://radarr"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type fakeAdder struct {
	ids []string
	err error
}

func (f *fakeAdder) Add(_ context.Context, id string, _ []string) (bool, error) {
	f.ids = append(f.ids, id)
	return f.err == nil, f.err
}

// TestForwarder_Request tests routing by media type and error aggregation.
func TestForwarder_Request(t *testing.T) {
	boom := errors.New("boom")
	radarr := &fakeAdder{}
	sonarr := &fakeAdder{err: boom}
	fwd := NewForwarder(radarr, sonarr, nil)

	err := fwd.Request(t.Context(), []reconcile.AcquisitionRequest{
		{MediaType: reconcile.MediaTypeMovie, Item: reconcile.DesiredItem{Title: "Dune", ExternalIDs: map[string]string{"tmdb": "438631"}}},
		{MediaType: reconcile.MediaTypeMovie, Item: reconcile.DesiredItem{Title: "No id"}},
		{MediaType: reconcile.MediaTypeSeries, Item: reconcile.DesiredItem{Title: "BB", ExternalIDs: map[string]string{"tvdb": "81189"}}},
		{MediaType: reconcile.MediaTypeSeries, Item: reconcile.DesiredItem{Title: "Only tmdb", ExternalIDs: map[string]string{"tmdb": "1"}}},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"438631"}, radarr.ids)
	assert.Equal(t, []string{"81189"}, sonarr.ids)

	// No sonarr configured: series are skipped without error.
	fwd = NewForwarder(radarr, nil, nil)
	assert.NoError(t, fwd.Request(t.Context(), []reconcile.AcquisitionRequest{
		{MediaType: reconcile.MediaTypeSeries, Item: reconcile.DesiredItem{Title: "BB", ExternalIDs: map[string]string{"tvdb": "81189"}}},
	}))
}
