package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"

	"go.uber.org/zap"
)

// DefaultTraktURL is the Trakt API root.
const DefaultTraktURL = "https://api.trakt.tv"

// TraktConfig holds the Trakt application credentials.
type TraktConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AccessToken  string `mapstructure:"access_token"`
	BaseURL      string `mapstructure:"base_url" default:"https://api.trakt.tv"`
}

// TraktClient reads Trakt charts.
type TraktClient struct {
	http   *httpclient.Client
	logger *zap.Logger
}

// NewTraktClient creates a Trakt client.
func NewTraktClient(cfg TraktConfig, logger *zap.Logger, opts ...httpclient.Option) (*TraktClient, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("trakt client id required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTraktURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := []httpclient.Option{
		httpclient.WithLogger(logger),
		httpclient.WithTimeout(30 * time.Second),
		httpclient.WithHeader("trakt-api-version", "2"),
		httpclient.WithHeader("trakt-api-key", cfg.ClientID),
	}
	if cfg.AccessToken != "" {
		base = append(base, httpclient.WithHeader("Authorization", "Bearer "+cfg.AccessToken))
	}
	c, err := httpclient.New(cfg.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trakt client: %w", err)
	}
	return &TraktClient{http: c, logger: logger}, nil
}

type traktIDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	IMDb  string `json:"imdb"`
	TMDb  int    `json:"tmdb"`
	TVDb  int    `json:"tvdb"`
}

type traktMedia struct {
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	IDs     traktIDs `json:"ids"`
	Rating  float64  `json:"rating"`
	Votes   int      `json:"votes"`
	Country string   `json:"country"`
}

func (m traktMedia) item(source string) Item {
	it := Item{
		Title:       m.Title,
		Year:        m.Year,
		IDs:         ids(m.IDs.TMDb, m.IDs.TVDb, m.IDs.IMDb),
		VoteAverage: m.Rating,
		VoteCount:   m.Votes,
		Source:      source,
	}
	if m.Country != "" {
		it.Countries = []string{m.Country}
	}
	return it
}

// traktEntry covers both wrapped ({"movie": {...}}) and bare chart entries.
type traktEntry struct {
	Movie *traktMedia `json:"movie"`
	Show  *traktMedia `json:"show"`
	traktMedia
}

func (e traktEntry) media() traktMedia {
	switch {
	case e.Movie != nil:
		return *e.Movie
	case e.Show != nil:
		return *e.Show
	}
	return e.traktMedia
}

func traktKind(mt reconcile.MediaType) string {
	if mt == reconcile.MediaTypeSeries {
		return "shows"
	}
	return "movies"
}

// Trending returns up to limit trending titles.
func (c *TraktClient) Trending(ctx context.Context, mt reconcile.MediaType, limit int) ([]Item, error) {
	return c.chart(ctx, "/"+traktKind(mt)+"/trending", limit, "trakt_trending")
}

// Popular returns up to limit popular titles.
func (c *TraktClient) Popular(ctx context.Context, mt reconcile.MediaType, limit int) ([]Item, error) {
	return c.chart(ctx, "/"+traktKind(mt)+"/popular", limit, "trakt_popular")
}

// Watched returns the most watched titles over period (daily, weekly, monthly, yearly, all).
func (c *TraktClient) Watched(ctx context.Context, mt reconcile.MediaType, period string, limit int) ([]Item, error) {
	if period == "" {
		period = "weekly"
	}
	return c.chart(ctx, "/"+traktKind(mt)+"/watched/"+period, limit, "trakt_watched_"+period)
}

func (c *TraktClient) chart(ctx context.Context, path string, limit int, source string) ([]Item, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("extended", "full")

	var entries []traktEntry
	if err := c.http.Get(ctx, path, q, &entries); err != nil {
		return nil, fmt.Errorf("trakt %s: %w", path, err)
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.media().item(source))
	}
	if len(items) > limit {
		items = items[:limit]
	}
	c.logger.Debug("Fetched trakt feed", zap.String("path", path), zap.Int("items", len(items)))
	return items, nil
}
