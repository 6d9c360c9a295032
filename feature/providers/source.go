package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"collection-manager/core/reconcile"
	"collection-manager/feature/collections"

	"go.uber.org/zap"
)

// TMDbFeed is the subset of TMDbClient used by Source.
type TMDbFeed interface {
	Trending(ctx context.Context, mt reconcile.MediaType, window string, limit int) ([]Item, error)
	Popular(ctx context.Context, mt reconcile.MediaType, limit int) ([]Item, error)
}

// TraktFeed is the subset of TraktClient used by Source.
type TraktFeed interface {
	Trending(ctx context.Context, mt reconcile.MediaType, limit int) ([]Item, error)
	Popular(ctx context.Context, mt reconcile.MediaType, limit int) ([]Item, error)
	Watched(ctx context.Context, mt reconcile.MediaType, period string, limit int) ([]Item, error)
}

// ErrFeedNotConfigured is returned when a collection uses a provider without credentials.
var ErrFeedNotConfigured = errors.New("feed not configured")

// Source builds desired items from collection definitions.
type Source struct {
	defs   *collections.File
	tmdb   TMDbFeed
	trakt  TraktFeed
	logger *zap.Logger
}

// NewSource creates a Source. tmdb and trakt may be nil when not configured; a
// collection using them then fails instead of shrinking silently.
func NewSource(defs *collections.File, tmdb TMDbFeed, trakt TraktFeed, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{defs: defs, tmdb: tmdb, trakt: trakt, logger: logger}
}

// DesiredItems implements reconcile.DesiredItemSource.
func (s *Source) DesiredItems(ctx context.Context, library string, target reconcile.CollectionTarget) ([]reconcile.DesiredItem, error) {
	lib, ok := s.defs.Library(library)
	if !ok {
		return nil, fmt.Errorf("library %q is not defined", library)
	}
	def, ok := s.defs.Find(library, target.Name)
	if !ok {
		return nil, fmt.Errorf("collection %q is not defined in library %q", target.Name, library)
	}

	raw, err := s.fetch(ctx, lib.ResolvedMediaType(), def)
	if err != nil {
		return nil, err
	}

	items := Limit(Filter(Dedupe(raw), def.Filters), def.Limit)
	out := make([]reconcile.DesiredItem, 0, len(items))
	for i, it := range items {
		out = append(out, it.desired(i+1))
	}

	s.logger.Debug("Built desired items",
		zap.String("library", library),
		zap.String("collection", target.Name),
		zap.Int("fetched", len(raw)),
		zap.Int("desired", len(out)))
	return out, nil
}

func (s *Source) fetch(ctx context.Context, mt reconcile.MediaType, def collections.Collection) ([]Item, error) {
	var items []Item
	for _, it := range def.Items {
		items = append(items, Item{Title: it.Title, Year: it.Year, IDs: it.ExternalIDs(), Source: "static"})
	}

	type feed struct {
		name  string
		count int
		needs any
		fetch func() ([]Item, error)
	}
	var chart collections.TraktChart
	if def.TraktChart != nil {
		chart = *def.TraktChart
		if chart.Limit <= 0 {
			chart.Limit = 20
		}
	}
	feeds := []feed{
		{"tmdb_trending_weekly", def.TMDbTrendingWeekly, s.tmdb, func() ([]Item, error) {
			return s.tmdb.Trending(ctx, mt, "week", def.TMDbTrendingWeekly)
		}},
		{"tmdb_trending_daily", def.TMDbTrendingDaily, s.tmdb, func() ([]Item, error) {
			return s.tmdb.Trending(ctx, mt, "day", def.TMDbTrendingDaily)
		}},
		{"tmdb_popular", def.TMDbPopular, s.tmdb, func() ([]Item, error) {
			return s.tmdb.Popular(ctx, mt, def.TMDbPopular)
		}},
		{"trakt_trending", def.TraktTrending, s.trakt, func() ([]Item, error) {
			return s.trakt.Trending(ctx, mt, def.TraktTrending)
		}},
		{"trakt_popular", def.TraktPopular, s.trakt, func() ([]Item, error) {
			return s.trakt.Popular(ctx, mt, def.TraktPopular)
		}},
		{"trakt_chart", chart.Limit, s.trakt, func() ([]Item, error) {
			switch strings.ToLower(chart.Chart) {
			case "trending":
				return s.trakt.Trending(ctx, mt, chart.Limit)
			case "popular":
				return s.trakt.Popular(ctx, mt, chart.Limit)
			default:
				return s.trakt.Watched(ctx, mt, strings.ToLower(chart.TimePeriod), chart.Limit)
			}
		}},
	}

	for _, f := range feeds {
		if f.count <= 0 {
			continue
		}
		if isNil(f.needs) {
			return nil, fmt.Errorf("%s: %w", f.name, ErrFeedNotConfigured)
		}
		got, err := f.fetch()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		items = append(items, got...)
	}
	return items, nil
}

func isNil(v any) bool {
	switch f := v.(type) {
	case nil:
		return true
	case *TMDbClient:
		return f == nil
	case *TraktClient:
		return f == nil
	}
	return false
}

// Dedupe keeps the first occurrence of every title. Items sharing any provider id
// are duplicates; items without ids compare by normalized title and year.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items)*2)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		keys := dedupeKeys(it)
		if len(keys) == 0 {
			continue
		}
		dup := false
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

func dedupeKeys(it Item) []string {
	var keys []string
	for _, ns := range reconcile.DefaultIDPriority {
		if id := strings.ToLower(strings.TrimSpace(it.IDs[ns])); id != "" {
			keys = append(keys, ns+":"+id)
		}
	}
	if len(keys) > 0 {
		return keys
	}
	if title := reconcile.NormalizeTitle(it.Title); title != "" {
		return []string{fmt.Sprintf("title:%s:%d", title, it.Year)}
	}
	return nil
}

// Filter drops items outside the filters. Missing metadata never drops an item.
func Filter(items []Item, f collections.Filters) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if keep(it, f) {
			out = append(out, it)
		}
	}
	return out
}

func keep(it Item, f collections.Filters) bool {
	if it.Year > 0 {
		if f.YearGTE > 0 && it.Year < f.YearGTE {
			return false
		}
		if f.YearLTE > 0 && it.Year > f.YearLTE {
			return false
		}
	}
	if it.VoteAverage > 0 {
		if f.VoteAverageGTE > 0 && it.VoteAverage < f.VoteAverageGTE {
			return false
		}
		if f.CriticRatingGTE > 0 && it.VoteAverage < f.CriticRatingGTE {
			return false
		}
	}
	if it.VoteCount > 0 && f.VoteCountGTE > 0 && it.VoteCount < f.VoteCountGTE {
		return false
	}
	for _, c := range it.Countries {
		if containsFold(f.CountryNot, c) || containsFold(f.OriginCountryNot, c) {
			return false
		}
	}
	return true
}

// Limit truncates items to n. Zero means no limit.
func Limit(items []Item, n int) []Item {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
