package providers

import (
	"context"
	"errors"
	"testing"

	"collection-manager/core/reconcile"
	"collection-manager/feature/collections"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTMDb struct {
	trending map[string][]Item
	popular  []Item
	err      error
}

func (f *fakeTMDb) Trending(_ context.Context, _ reconcile.MediaType, window string, limit int) ([]Item, error) {
	return Limit(f.trending[window], limit), f.err
}

func (f *fakeTMDb) Popular(_ context.Context, _ reconcile.MediaType, limit int) ([]Item, error) {
	return Limit(f.popular, limit), f.err
}

type fakeTrakt struct {
	calls []string
}

func (f *fakeTrakt) Trending(context.Context, reconcile.MediaType, int) ([]Item, error) {
	f.calls = append(f.calls, "trending")
	return []Item{{Title: "Oppenheimer", Year: 2023, IDs: map[string]string{"imdb": "tt15398776"}}}, nil
}

func (f *fakeTrakt) Popular(context.Context, reconcile.MediaType, int) ([]Item, error) {
	f.calls = append(f.calls, "popular")
	return nil, nil
}

func (f *fakeTrakt) Watched(_ context.Context, _ reconcile.MediaType, period string, _ int) ([]Item, error) {
	f.calls = append(f.calls, "watched:"+period)
	return []Item{{Title: "Barbie", Year: 2023, IDs: map[string]string{"tmdb": "346698"}}}, nil
}

func tmdbItem(id, title string, year int) Item {
	return Item{Title: title, Year: year, IDs: map[string]string{"tmdb": id}}
}

func testDefs() *collections.File {
	return &collections.File{Libraries: []collections.Library{{
		Name: "Films",
		Collections: []collections.Collection{
			{
				Name:               "Mixed",
				Items:              []collections.Item{{TMDb: "603", Title: "The Matrix", Year: 1999}, {Title: "Casablanca", Year: 1942}},
				TMDbTrendingWeekly: 10,
				TMDbPopular:        10,
				TraktChart:         &collections.TraktChart{Chart: "watched", TimePeriod: "weekly"},
				Limit:              5,
			},
			{
				Name:          "Filtered",
				TMDbPopular:   10,
				TraktTrending: 5,
				Filters:       collections.Filters{YearGTE: 2000, VoteAverageGTE: 6, CountryNot: []string{"IN"}},
			},
		},
	}}}
}

// TestSource_DesiredItems tests ordering, dedupe, ranks and the limit.
func TestSource_DesiredItems(t *testing.T) {
	tmdb := &fakeTMDb{
		trending: map[string][]Item{"week": {tmdbItem("603", "The Matrix", 1999), tmdbItem("1", "Alpha", 2024)}},
		popular:  []Item{tmdbItem("1", "Alpha", 2024), tmdbItem("2", "Beta", 2024), tmdbItem("3", "Gamma", 2024)},
	}
	trakt := &fakeTrakt{}
	src := NewSource(testDefs(), tmdb, trakt, nil)

	items, err := src.DesiredItems(t.Context(), "Films", reconcile.CollectionTarget{Name: "Mixed"})
	require.NoError(t, err)

	var titles []string
	for i, it := range items {
		titles = append(titles, it.Title)
		assert.Equal(t, i+1, it.SourceRank)
	}
	assert.Equal(t, []string{"The Matrix", "Casablanca", "Alpha", "Beta", "Gamma"}, titles)
	assert.Equal(t, "static", items[0].Source)
	assert.Equal(t, []string{"watched:weekly"}, trakt.calls)
}

// TestSource_Filters tests filters with missing metadata.
func TestSource_Filters(t *testing.T) {
	tmdb := &fakeTMDb{popular: []Item{
		{Title: "Old", Year: 1990, IDs: map[string]string{"tmdb": "1"}, VoteAverage: 8},
		{Title: "Bad", Year: 2020, IDs: map[string]string{"tmdb": "2"}, VoteAverage: 4},
		{Title: "Foreign", Year: 2020, IDs: map[string]string{"tmdb": "3"}, VoteAverage: 7, Countries: []string{"in"}},
		{Title: "Unrated", Year: 2020, IDs: map[string]string{"tmdb": "4"}},
		{Title: "Good", Year: 2021, IDs: map[string]string{"tmdb": "5"}, VoteAverage: 7.2, Countries: []string{"FR"}},
	}}
	src := NewSource(testDefs(), tmdb, &fakeTrakt{}, nil)

	items, err := src.DesiredItems(t.Context(), "Films", reconcile.CollectionTarget{Name: "Filtered"})
	require.NoError(t, err)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"Unrated", "Good", "Oppenheimer"}, titles)
}

// TestSource_Errors tests unknown collections, missing feeds and provider failures.
func TestSource_Errors(t *testing.T) {
	src := NewSource(testDefs(), &fakeTMDb{}, nil, nil)

	_, err := src.DesiredItems(t.Context(), "Series", reconcile.CollectionTarget{Name: "Mixed"})
	assert.Error(t, err)

	_, err = src.DesiredItems(t.Context(), "Films", reconcile.CollectionTarget{Name: "Nope"})
	assert.Error(t, err)

	_, err = src.DesiredItems(t.Context(), "Films", reconcile.CollectionTarget{Name: "Mixed"})
	assert.ErrorIs(t, err, ErrFeedNotConfigured)

	var nilClient *TraktClient
	src = NewSource(testDefs(), &fakeTMDb{}, nilClient, nil)
	_, err = src.DesiredItems(t.Context(), "Films", reconcile.CollectionTarget{Name: "Mixed"})
	assert.ErrorIs(t, err, ErrFeedNotConfigured)

	boom := errors.New("boom")
	src = NewSource(testDefs(), &fakeTMDb{err: boom}, &fakeTrakt{}, nil)
	_, err = src.DesiredItems(t.Context(), "Films", reconcile.CollectionTarget{Name: "Filtered"})
	assert.ErrorIs(t, err, boom)
}

// TestDedupe tests id and title based duplicate detection.
func TestDedupe(t *testing.T) {
	items := []Item{
		{Title: "A", IDs: map[string]string{"tmdb": "1", "imdb": "tt1"}},
		{Title: "A again", IDs: map[string]string{"imdb": "TT1"}},
		{Title: "Amélie", Year: 2001},
		{Title: "amelie", Year: 2001},
		{Title: "Amelie", Year: 2002},
		{Title: "??"},
	}
	out := Dedupe(items)

	var titles []string
	for _, it := range out {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"A", "Amélie", "Amelie"}, titles)
}
