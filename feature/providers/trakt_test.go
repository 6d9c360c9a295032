package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"collection-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTraktClient tests the chart endpoints and headers.
func TestTraktClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.Header.Get("trakt-api-version"))
		assert.Equal(t, "client", r.Header.Get("trakt-api-key"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "full", r.URL.Query().Get("extended"))

		switch r.URL.Path {
		case "/movies/trending":
			_, _ = w.Write([]byte(`[{"watchers": 10, "movie": {"title": "Dune: Part Two", "year": 2024,
				"ids": {"trakt": 1, "tmdb": 693134, "imdb": "tt15239678"}, "rating": 8.4, "votes": 9000, "country": "us"}}]`))
		case "/shows/popular":
			_, _ = w.Write([]byte(`[{"title": "Severance", "year": 2022, "ids": {"tmdb": 95396, "tvdb": 371980}}]`))
		case "/shows/watched/monthly":
			_, _ = w.Write([]byte(`[{"watcher_count": 5, "show": {"title": "Shōgun", "year": 2024, "ids": {"tvdb": 392573}}}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := NewTraktClient(TraktConfig{ClientID: "client", AccessToken: "token", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	items, err := c.Trending(t.Context(), reconcile.MediaTypeMovie, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]string{"tmdb": "693134", "imdb": "tt15239678"}, items[0].IDs)
	assert.Equal(t, []string{"us"}, items[0].Countries)
	assert.InDelta(t, 8.4, items[0].VoteAverage, 1e-9)

	items, err = c.Popular(t.Context(), reconcile.MediaTypeSeries, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Severance", items[0].Title)
	assert.Equal(t, map[string]string{"tmdb": "95396", "tvdb": "371980"}, items[0].IDs)

	items, err = c.Watched(t.Context(), reconcile.MediaTypeSeries, "monthly", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "trakt_watched_monthly", items[0].Source)
	assert.Equal(t, 2024, items[0].Year)
}
