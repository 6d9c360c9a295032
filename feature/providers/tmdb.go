package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"
	"collection-manager/core/utils"

	"go.uber.org/zap"
)

// DefaultTMDbURL is the TMDb v3 API root.
const DefaultTMDbURL = "https://api.themoviedb.org/3"

const tmdbMaxPages = 25

// TMDbConfig holds the TMDb credentials.
type TMDbConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url" default:"https://api.themoviedb.org/3"`
	Language string `mapstructure:"language" default:"en-US"`
	Region   string `mapstructure:"region"`
}

// TMDbClient reads TMDb trending and popular lists.
type TMDbClient struct {
	http   *httpclient.Client
	cfg    TMDbConfig
	logger *zap.Logger
}

// NewTMDbClient creates a TMDb client.
func NewTMDbClient(cfg TMDbConfig, logger *zap.Logger, opts ...httpclient.Option) (*TMDbClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tmdb api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTMDbURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]httpclient.Option{httpclient.WithLogger(logger), httpclient.WithTimeout(30 * time.Second)}, opts...)
	c, err := httpclient.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tmdb client: %w", err)
	}
	return &TMDbClient{http: c, cfg: cfg, logger: logger}, nil
}

type tmdbPage struct {
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Results    []tmdbResult `json:"results"`
}

type tmdbResult struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Name          string   `json:"name"`
	ReleaseDate   string   `json:"release_date"`
	FirstAirDate  string   `json:"first_air_date"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int      `json:"vote_count"`
	OriginCountry []string `json:"origin_country"`
	MediaType     string   `json:"media_type"`
}

func (r tmdbResult) item(source string) Item {
	title, date := r.Title, r.ReleaseDate
	if title == "" {
		title, date = r.Name, r.FirstAirDate
	}
	return Item{
		Title:       title,
		Year:        utils.YearFromDate(date),
		IDs:         ids(r.ID, 0, ""),
		VoteAverage: r.VoteAverage,
		VoteCount:   r.VoteCount,
		Countries:   r.OriginCountry,
		Source:      source,
	}
}

func tmdbKind(mt reconcile.MediaType) string {
	if mt == reconcile.MediaTypeSeries {
		return "tv"
	}
	return "movie"
}

// Trending returns up to limit trending titles for a "day" or "week" window.
func (c *TMDbClient) Trending(ctx context.Context, mt reconcile.MediaType, window string, limit int) ([]Item, error) {
	source := "tmdb_trending_weekly"
	if window == "day" {
		source = "tmdb_trending_daily"
	}
	return c.walk(ctx, fmt.Sprintf("/trending/%s/%s", tmdbKind(mt), window), limit, source)
}

// Popular returns up to limit popular titles.
func (c *TMDbClient) Popular(ctx context.Context, mt reconcile.MediaType, limit int) ([]Item, error) {
	return c.walk(ctx, fmt.Sprintf("/%s/popular", tmdbKind(mt)), limit, "tmdb_popular")
}

func (c *TMDbClient) walk(ctx context.Context, path string, limit int, source string) ([]Item, error) {
	var items []Item
	for page := 1; len(items) < limit && page <= tmdbMaxPages; page++ {
		q := url.Values{}
		q.Set("api_key", c.cfg.APIKey)
		q.Set("page", strconv.Itoa(page))
		if c.cfg.Language != "" {
			q.Set("language", c.cfg.Language)
		}
		if c.cfg.Region != "" {
			q.Set("region", c.cfg.Region)
		}

		var resp tmdbPage
		if err := c.http.Get(ctx, path, q, &resp); err != nil {
			return nil, fmt.Errorf("tmdb %s page %d: %w", path, page, err)
		}
		for _, r := range resp.Results {
			if r.MediaType == "person" {
				continue
			}
			items = append(items, r.item(source))
		}
		if len(resp.Results) == 0 || page >= resp.TotalPages {
			break
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	c.logger.Debug("Fetched tmdb feed", zap.String("path", path), zap.Int("items", len(items)))
	return items, nil
}
