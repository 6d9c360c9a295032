package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComputeDiff tests add/remove derivation.
func TestComputeDiff(t *testing.T) {
	tests := []struct {
		name       string
		desired    []string
		current    Membership
		wantAdd    []string
		wantRemove []string
	}{
		{"empty collection", []string{"b", "a"}, NewMembership(), []string{"a", "b"}, []string{}},
		{"already in sync", []string{"a", "b"}, NewMembership("b", "a"), []string{}, []string{}},
		{"stale entry removed", []string{"a"}, NewMembership("a", "z"), []string{}, []string{"z"}},
		{"nothing desired clears", nil, NewMembership("a", "b"), []string{}, []string{"a", "b"}},
		{"duplicates and blanks ignored", []string{"a", "", "a", "c"}, NewMembership("b"), []string{"a", "c"}, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := ComputeDiff(tt.desired, tt.current)
			assert.Equal(t, tt.wantAdd, diff.ToAdd)
			assert.Equal(t, tt.wantRemove, diff.ToRemove)
			assert.Equal(t, len(tt.wantAdd) == 0 && len(tt.wantRemove) == 0, diff.Empty())
		})
	}
}

// TestComputeDiff_Properties tests that applying a diff yields the desired set,
// that the sets are disjoint, and that a second diff is empty.
func TestComputeDiff_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pick := func() []string {
		var out []string
		for i := 0; i < 20; i++ {
			if rng.Intn(2) == 0 {
				out = append(out, fmt.Sprintf("e%d", i))
			}
		}
		return out
	}

	for i := 0; i < 200; i++ {
		desired := pick()
		current := NewMembership(pick()...)

		diff := ComputeDiff(desired, current)
		for _, id := range diff.ToAdd {
			assert.NotContains(t, diff.ToRemove, id)
		}

		next := current.Apply(diff)
		assert.Equal(t, NewMembership(desired...), next)
		assert.True(t, ComputeDiff(desired, next).Empty())
	}
}

// TestMembership_Apply tests that Apply leaves the receiver untouched.
func TestMembership_Apply(t *testing.T) {
	current := NewMembership("a", "b")
	next := current.Apply(Diff{ToAdd: []string{"c"}, ToRemove: []string{"a"}})

	assert.Equal(t, NewMembership("b", "c"), next)
	assert.Equal(t, NewMembership("a", "b"), current)
}

// TestMatchedEntries tests rank ordering and de-duplication.
func TestMatchedEntries(t *testing.T) {
	outcomes := []ItemOutcome{
		{Result: Matched("e2", MatchedByExactID)},
		{Result: Unmatched(ReasonNoCandidate)},
		{Result: Matched("e1", MatchedByTitleYear)},
		{Result: Matched("e2", MatchedByFuzzyTitle)},
	}
	assert.Equal(t, []string{"e2", "e1"}, MatchedEntries(outcomes))
}
