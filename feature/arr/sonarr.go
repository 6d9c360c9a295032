package arr

import (
	"context"
	"fmt"
	"net/url"

	"collection-manager/core/httpclient"

	"go.uber.org/zap"
)

// Sonarr adds series to a Sonarr instance.
type Sonarr struct {
	*client
}

// NewSonarr creates a Sonarr client.
func NewSonarr(cfg Config, logger *zap.Logger, opts ...httpclient.Option) (*Sonarr, error) {
	c, err := newClient("sonarr", cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Sonarr{client: c}, nil
}

// Add adds the series with the given TVDB id unless Sonarr already has it.
// It reports whether the series was added.
func (s *Sonarr) Add(ctx context.Context, tvdbID string, tags []string) (bool, error) {
	q := url.Values{}
	q.Set("tvdbId", tvdbID)

	var existing []map[string]any
	if err := s.http.Get(ctx, "/api/v3/series", q, &existing); err != nil {
		return false, fmt.Errorf("sonarr lookup existing %s: %w", tvdbID, err)
	}
	if len(existing) > 0 {
		s.logger.Debug("Series already in sonarr", zap.String("tvdb", tvdbID))
		return false, nil
	}

	lq := url.Values{}
	lq.Set("term", "tvdb:"+tvdbID)
	var results []map[string]any
	if err := s.http.Get(ctx, "/api/v3/series/lookup", lq, &results); err != nil {
		return false, fmt.Errorf("sonarr lookup %s: %w", tvdbID, err)
	}
	if len(results) == 0 {
		return false, fmt.Errorf("sonarr lookup %s: no result", tvdbID)
	}
	series := results[0]

	profile, err := s.qualityProfileID(ctx)
	if err != nil {
		return false, fmt.Errorf("sonarr: %w", err)
	}
	folder, err := s.rootFolderPath(ctx)
	if err != nil {
		return false, fmt.Errorf("sonarr: %w", err)
	}
	tagIDs, err := s.tagIDs(ctx, tags)
	if err != nil {
		return false, fmt.Errorf("sonarr: %w", err)
	}

	series["rootFolderPath"] = folder
	series["qualityProfileId"] = profile
	series["monitored"] = true
	series["seasonFolder"] = true
	series["seriesType"] = "standard"
	series["tags"] = tagIDs
	series["addOptions"] = map[string]any{
		"monitor":                      "all",
		"searchForMissingEpisodes":     true,
		"searchForCutoffUnmetEpisodes": false,
	}

	if err := s.http.Post(ctx, "/api/v3/series", nil, series, nil); err != nil {
		return false, fmt.Errorf("sonarr add %s: %w", tvdbID, err)
	}
	s.logger.Info("Added series to sonarr", zap.String("tvdb", tvdbID), zap.Any("title", series["title"]))
	return true, nil
}
