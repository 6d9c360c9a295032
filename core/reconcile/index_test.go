package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testLibrary() []LibraryItem {
	return []LibraryItem{
		{EntryID: "e1", Title: "The Matrix", Year: 1999, ExternalIDs: map[string]string{"tmdb": "603", "imdb": "tt0133093"}},
		{EntryID: "e2", Title: "The Matrix Reloaded", Year: 2003, ExternalIDs: map[string]string{"tmdb": "604"}},
		{EntryID: "e3", Title: "Amélie", Year: 2001},
		{EntryID: "e4", Title: "Home Movies", Year: 0},
	}
}

// TestNewIndex_Lookups tests external id and title/year lookups.
func TestNewIndex_Lookups(t *testing.T) {
	idx := NewIndex(testLibrary(), zap.NewNop())

	assert.Equal(t, 4, idx.Len())
	assert.True(t, idx.Contains("e3"))
	assert.False(t, idx.Contains("e9"))

	entry, ok := idx.LookupByExternalID("tmdb", "603")
	assert.True(t, ok)
	assert.Equal(t, "e1", entry)

	entry, ok = idx.LookupByExternalID("imdb", "TT0133093")
	assert.True(t, ok)
	assert.Equal(t, "e1", entry)

	_, ok = idx.LookupByExternalID("tvdb", "603")
	assert.False(t, ok)

	entry, ok = idx.LookupByTitleYear("AMELIE", 2001)
	assert.True(t, ok)
	assert.Equal(t, "e3", entry)

	_, ok = idx.LookupByTitleYear("Amelie", 2002)
	assert.False(t, ok)

	entry, ok = idx.LookupByTitleYear("home movies", 0)
	assert.True(t, ok)
	assert.Equal(t, "e4", entry)
}

// TestNewIndex_Collisions tests that the first entry wins on key collisions.
func TestNewIndex_Collisions(t *testing.T) {
	idx := NewIndex([]LibraryItem{
		{EntryID: "a", Title: "Dune", Year: 2021, ExternalIDs: map[string]string{"tmdb": "438631"}},
		{EntryID: "b", Title: "Dune", Year: 2021, ExternalIDs: map[string]string{"tmdb": "438631"}},
		{EntryID: "a", Title: "Duplicate"},
	}, nil)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 3, idx.Collisions())

	entry, _ := idx.LookupByExternalID("tmdb", "438631")
	assert.Equal(t, "a", entry)
	entry, _ = idx.LookupByTitleYear("Dune", 2021)
	assert.Equal(t, "a", entry)
}

// TestIndex_Candidates tests year filtering of fuzzy candidates.
func TestIndex_Candidates(t *testing.T) {
	idx := NewIndex(testLibrary(), zap.NewNop())

	ids := func(cs []Candidate) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.EntryID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"e1", "e2", "e3", "e4"}, ids(idx.Candidates(0, 1)))
	assert.ElementsMatch(t, []string{"e2"}, ids(idx.Candidates(2004, 1)))
	assert.ElementsMatch(t, []string{"e1", "e3"}, ids(idx.Candidates(2000, 1)))
	assert.ElementsMatch(t, []string{"e3"}, ids(idx.Candidates(2001, 0)))
	assert.ElementsMatch(t, []string{"e1", "e2", "e3"}, ids(idx.Candidates(2001, 2)))
	assert.Empty(t, idx.Candidates(1950, 1))
}
