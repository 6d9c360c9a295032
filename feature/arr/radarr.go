package arr

import (
	"context"
	"fmt"
	"net/url"

	"collection-manager/core/httpclient"

	"go.uber.org/zap"
)

// Radarr adds movies to a Radarr instance.
type Radarr struct {
	*client
}

// NewRadarr creates a Radarr client.
func NewRadarr(cfg Config, logger *zap.Logger, opts ...httpclient.Option) (*Radarr, error) {
	c, err := newClient("radarr", cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Radarr{client: c}, nil
}

// Add adds the movie with the given TMDb id unless Radarr already has it.
// It reports whether the movie was added.
func (r *Radarr) Add(ctx context.Context, tmdbID string, tags []string) (bool, error) {
	q := url.Values{}
	q.Set("tmdbId", tmdbID)

	var existing []map[string]any
	if err := r.http.Get(ctx, "/api/v3/movie", q, &existing); err != nil {
		return false, fmt.Errorf("radarr lookup existing %s: %w", tmdbID, err)
	}
	if len(existing) > 0 {
		r.logger.Debug("Movie already in radarr", zap.String("tmdb", tmdbID))
		return false, nil
	}

	var movie map[string]any
	if err := r.http.Get(ctx, "/api/v3/movie/lookup/tmdb", q, &movie); err != nil {
		return false, fmt.Errorf("radarr lookup %s: %w", tmdbID, err)
	}
	if len(movie) == 0 {
		return false, fmt.Errorf("radarr lookup %s: no result", tmdbID)
	}

	profile, err := r.qualityProfileID(ctx)
	if err != nil {
		return false, fmt.Errorf("radarr: %w", err)
	}
	folder, err := r.rootFolderPath(ctx)
	if err != nil {
		return false, fmt.Errorf("radarr: %w", err)
	}
	tagIDs, err := r.tagIDs(ctx, tags)
	if err != nil {
		return false, fmt.Errorf("radarr: %w", err)
	}

	movie["rootFolderPath"] = folder
	movie["qualityProfileId"] = profile
	movie["monitored"] = true
	movie["minimumAvailability"] = "announced"
	movie["tags"] = tagIDs
	movie["addOptions"] = map[string]any{"searchForMovie": true}

	if err := r.http.Post(ctx, "/api/v3/movie", nil, movie, nil); err != nil {
		return false, fmt.Errorf("radarr add %s: %w", tmdbID, err)
	}
	r.logger.Info("Added movie to radarr", zap.String("tmdb", tmdbID), zap.Any("title", movie["title"]))
	return true, nil
}
