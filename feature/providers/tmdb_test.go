package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmdbServer(t *testing.T, perPage, totalPages int) (*httptest.Server, *[]string) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		paths = append(paths, r.URL.Path+"?page="+r.URL.Query().Get("page"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		var results []map[string]any
		for i := 0; i < perPage; i++ {
			id := (page-1)*perPage + i + 1
			results = append(results, map[string]any{
				"id":             id,
				"title":          fmt.Sprintf("Movie %d", id),
				"release_date":   "2024-05-01",
				"vote_average":   7.5,
				"vote_count":     1200,
				"origin_country": []string{"US"},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"page": page, "total_pages": totalPages, "results": results})
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

// TestTMDbClient_Trending tests page walking up to the limit.
func TestTMDbClient_Trending(t *testing.T) {
	srv, paths := tmdbServer(t, 20, 10)
	c, err := NewTMDbClient(TMDbConfig{APIKey: "secret", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	items, err := c.Trending(t.Context(), reconcile.MediaTypeMovie, "week", 30)
	require.NoError(t, err)
	require.Len(t, items, 30)
	assert.Equal(t, []string{"/trending/movie/week?page=1", "/trending/movie/week?page=2"}, *paths)

	first := items[0]
	assert.Equal(t, "Movie 1", first.Title)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, map[string]string{"tmdb": "1"}, first.IDs)
	assert.Equal(t, []string{"US"}, first.Countries)
	assert.Equal(t, "tmdb_trending_weekly", first.Source)
}

// TestTMDbClient_Popular tests stopping at the last page and series paths.
func TestTMDbClient_Popular(t *testing.T) {
	srv, paths := tmdbServer(t, 5, 2)
	c, err := NewTMDbClient(TMDbConfig{APIKey: "secret", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	items, err := c.Popular(t.Context(), reconcile.MediaTypeSeries, 50)
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, []string{"/tv/popular?page=1", "/tv/popular?page=2"}, *paths)
}

// TestTMDbClient_Error tests error propagation.
func TestTMDbClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewTMDbClient(TMDbConfig{APIKey: "secret", BaseURL: srv.URL}, nil, httpclient.WithRetries(1))
	require.NoError(t, err)

	_, err = c.Trending(t.Context(), reconcile.MediaTypeMovie, "day", 5)
	assert.True(t, httpclient.IsStatus(err, http.StatusUnauthorized))

	_, err = NewTMDbClient(TMDbConfig{}, nil)
	assert.Error(t, err)
}
