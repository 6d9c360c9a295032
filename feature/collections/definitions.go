package collections

import (
	"strings"

	"collection-manager/core/reconcile"
)

// File is the root of the definitions file.
type File struct {
	Libraries []Library `yaml:"libraries" json:"libraries"`
}

// Library groups the collections of one media server library.
type Library struct {
	// Name is the library name on the media server.
	Name string `yaml:"name" json:"name"`

	// Type is "movie" or "series". Inferred from Name when empty.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	Collections []Collection `yaml:"collections" json:"collections"`
}

// Collection defines where the titles of one collection come from.
type Collection struct {
	Name      string `yaml:"name" json:"name"`
	Summary   string `yaml:"summary,omitempty" json:"summary,omitempty"`
	SortTitle string `yaml:"sort_title,omitempty" json:"sort_title,omitempty"`
	Schedule  string `yaml:"schedule,omitempty" json:"schedule,omitempty"`

	TMDbTrendingWeekly int         `yaml:"tmdb_trending_weekly,omitempty" json:"tmdb_trending_weekly,omitempty"`
	TMDbTrendingDaily  int         `yaml:"tmdb_trending_daily,omitempty" json:"tmdb_trending_daily,omitempty"`
	TMDbPopular        int         `yaml:"tmdb_popular,omitempty" json:"tmdb_popular,omitempty"`
	TraktTrending      int         `yaml:"trakt_trending,omitempty" json:"trakt_trending,omitempty"`
	TraktPopular       int         `yaml:"trakt_popular,omitempty" json:"trakt_popular,omitempty"`
	TraktChart         *TraktChart `yaml:"trakt_chart,omitempty" json:"trakt_chart,omitempty"`
	Items              []Item      `yaml:"items,omitempty" json:"items,omitempty"`

	Filters Filters `yaml:"filters,omitempty" json:"filters,omitempty"`
	Limit   int     `yaml:"limit,omitempty" json:"limit,omitempty"`

	AcquireMissing bool   `yaml:"acquire_missing,omitempty" json:"acquire_missing,omitempty"`
	RadarrTag      string `yaml:"radarr_tag,omitempty" json:"radarr_tag,omitempty"`
	SonarrTag      string `yaml:"sonarr_tag,omitempty" json:"sonarr_tag,omitempty"`
}

// TraktChart selects a Trakt chart feed.
type TraktChart struct {
	// Chart is watched, trending or popular.
	Chart string `yaml:"chart" json:"chart"`
	// TimePeriod applies to the watched chart (daily, weekly, monthly, yearly, all).
	TimePeriod string `yaml:"time_period,omitempty" json:"time_period,omitempty"`
	Limit      int    `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Item is a statically listed title.
type Item struct {
	TMDb  string `yaml:"tmdb,omitempty" json:"tmdb,omitempty"`
	IMDb  string `yaml:"imdb,omitempty" json:"imdb,omitempty"`
	TVDb  string `yaml:"tvdb,omitempty" json:"tvdb,omitempty"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Year  int    `yaml:"year,omitempty" json:"year,omitempty"`
}

// ExternalIDs returns the non-empty provider ids.
func (i Item) ExternalIDs() map[string]string {
	ids := make(map[string]string, 3)
	for ns, id := range map[string]string{
		reconcile.NamespaceTMDb: i.TMDb,
		reconcile.NamespaceIMDb: i.IMDb,
		reconcile.NamespaceTVDb: i.TVDb,
	} {
		if id = strings.TrimSpace(id); id != "" {
			ids[ns] = id
		}
	}
	return ids
}

// Filters narrow the provider items before the limit is applied.
// Items lacking the filtered metadata are kept.
type Filters struct {
	YearGTE          int      `yaml:"year_gte,omitempty" json:"year_gte,omitempty"`
	YearLTE          int      `yaml:"year_lte,omitempty" json:"year_lte,omitempty"`
	VoteAverageGTE   float64  `yaml:"vote_average_gte,omitempty" json:"vote_average_gte,omitempty"`
	CriticRatingGTE  float64  `yaml:"critic_rating_gte,omitempty" json:"critic_rating_gte,omitempty"`
	VoteCountGTE     int      `yaml:"vote_count_gte,omitempty" json:"vote_count_gte,omitempty"`
	CountryNot       []string `yaml:"country_not,omitempty" json:"country_not,omitempty"`
	OriginCountryNot []string `yaml:"origin_country_not,omitempty" json:"origin_country_not,omitempty"`
}

// HasFeeds reports whether the collection has at least one source of titles.
func (c Collection) HasFeeds() bool {
	return c.TMDbTrendingWeekly > 0 || c.TMDbTrendingDaily > 0 || c.TMDbPopular > 0 ||
		c.TraktTrending > 0 || c.TraktPopular > 0 || c.TraktChart != nil || len(c.Items) > 0
}

// ResolvedMediaType returns the configured type, or infers it from the library name.
func (l Library) ResolvedMediaType() reconcile.MediaType {
	switch strings.ToLower(strings.TrimSpace(l.Type)) {
	case "movie", "movies":
		return reconcile.MediaTypeMovie
	case "series", "show", "shows", "tv":
		return reconcile.MediaTypeSeries
	}

	name := strings.ToLower(l.Name)
	for _, kw := range []string{"film", "movie", "cinéma"} {
		if strings.Contains(name, kw) {
			return reconcile.MediaTypeMovie
		}
	}
	for _, kw := range []string{"série", "series", "tv", "show", "cartoon"} {
		if strings.Contains(name, kw) {
			return reconcile.MediaTypeSeries
		}
	}
	return reconcile.MediaTypeMovie
}

// Target converts the library into the engine's run target.
func (l Library) Target() reconcile.LibraryTarget {
	mediaType := l.ResolvedMediaType()
	target := reconcile.LibraryTarget{
		Name:        l.Name,
		MediaType:   mediaType,
		Collections: make([]reconcile.CollectionTarget, 0, len(l.Collections)),
	}
	for _, c := range l.Collections {
		tag := c.RadarrTag
		if mediaType == reconcile.MediaTypeSeries {
			tag = c.SonarrTag
		}
		var tags []string
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = []string{tag}
		}
		target.Collections = append(target.Collections, reconcile.CollectionTarget{
			Name: c.Name,
			Metadata: reconcile.CollectionMetadata{
				Summary:   c.Summary,
				SortTitle: c.SortTitle,
			},
			AcquireMissing: c.AcquireMissing,
			Tags:           tags,
		})
	}
	return target
}

// Find returns the definition of a collection.
func (f *File) Find(library, collection string) (Collection, bool) {
	for _, l := range f.Libraries {
		if l.Name != library {
			continue
		}
		for _, c := range l.Collections {
			if c.Name == collection {
				return c, true
			}
		}
	}
	return Collection{}, false
}

// Library returns a library by name.
func (f *File) Library(name string) (Library, bool) {
	for _, l := range f.Libraries {
		if l.Name == name {
			return l, true
		}
	}
	return Library{}, false
}

// Select keeps the named libraries and collections. Empty filters keep everything;
// names compare case-insensitively. Libraries left without collections are dropped.
func (f *File) Select(libraries, collections []string) []Library {
	var out []Library
	for _, l := range f.Libraries {
		if len(libraries) > 0 && !containsFold(libraries, l.Name) {
			continue
		}
		sel := Library{Name: l.Name, Type: l.Type}
		for _, c := range l.Collections {
			if len(collections) > 0 && !containsFold(collections, c.Name) {
				continue
			}
			sel.Collections = append(sel.Collections, c)
		}
		if len(sel.Collections) > 0 {
			out = append(out, sel)
		}
	}
	return out
}

// Targets converts libraries into run targets.
func Targets(libraries []Library) []reconcile.LibraryTarget {
	out := make([]reconcile.LibraryTarget, 0, len(libraries))
	for _, l := range libraries {
		out = append(out, l.Target())
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
