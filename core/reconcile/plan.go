package reconcile

import (
	"sort"
)

// Diff is the membership change for one collection.
// ToAdd and ToRemove are disjoint and sorted.
type Diff struct {
	ToAdd    []string `json:"to_add"`
	ToRemove []string `json:"to_remove"`
}

// Empty reports whether the diff changes nothing.
func (d Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// ComputeDiff returns the entries to add (desired but not present) and the entries
// to remove (present but not desired). Duplicate and empty ids in desired are ignored.
// Applying the diff to current yields exactly the desired set, so a second
// computation against the result is empty.
func ComputeDiff(desired []string, current Membership) Diff {
	want := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		if id != "" {
			want[id] = struct{}{}
		}
	}

	diff := Diff{ToAdd: []string{}, ToRemove: []string{}}
	for id := range want {
		if _, ok := current[id]; !ok {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for id := range current {
		if _, ok := want[id]; !ok {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}

	sort.Strings(diff.ToAdd)
	sort.Strings(diff.ToRemove)
	return diff
}

// Apply returns the membership that results from applying the diff.
// The receiver is not modified.
func (m Membership) Apply(d Diff) Membership {
	out := make(Membership, len(m)+len(d.ToAdd))
	for id := range m {
		out[id] = struct{}{}
	}
	for _, id := range d.ToRemove {
		delete(out, id)
	}
	for _, id := range d.ToAdd {
		out[id] = struct{}{}
	}
	return out
}

// MatchedEntries returns the entry ids of matched outcomes in rank order, once each.
func MatchedEntries(outcomes []ItemOutcome) []string {
	seen := make(map[string]struct{}, len(outcomes))
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Result.Matched {
			continue
		}
		if _, dup := seen[o.Result.EntryID]; dup {
			continue
		}
		seen[o.Result.EntryID] = struct{}{}
		out = append(out, o.Result.EntryID)
	}
	return out
}
