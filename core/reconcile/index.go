package reconcile

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Candidate is a library entry prepared for fuzzy comparison.
type Candidate struct {
	EntryID string
	// Title is the normalized title.
	Title string
	Year  int
}

// Index is an immutable lookup structure over one library snapshot.
// It is fully built by NewIndex before any reader sees it and is never mutated
// afterwards, so concurrent lookups are safe.
type Index struct {
	byExternal  map[string]string
	byTitleYear map[string]string
	entries     map[string]LibraryItem
	titles      []Candidate
	collisions  int
}

// NewIndex builds the lookup maps for a snapshot.
// On key collisions the first entry wins and the collision is logged.
func NewIndex(items []LibraryItem, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &Index{
		byExternal:  make(map[string]string, len(items)),
		byTitleYear: make(map[string]string, len(items)),
		entries:     make(map[string]LibraryItem, len(items)),
		titles:      make([]Candidate, 0, len(items)),
	}

	for _, item := range items {
		if item.EntryID == "" {
			continue
		}
		if _, dup := idx.entries[item.EntryID]; dup {
			idx.collisions++
			logger.Warn("duplicate entry id in snapshot", zap.String("entry_id", item.EntryID))
			continue
		}
		idx.entries[item.EntryID] = item

		for ns, id := range item.ExternalIDs {
			if strings.TrimSpace(id) == "" {
				continue
			}
			key := externalKey(ns, id)
			if owner, taken := idx.byExternal[key]; taken {
				idx.collisions++
				logger.Warn("external id collision",
					zap.String("key", key),
					zap.String("kept", owner),
					zap.String("ignored", item.EntryID))
				continue
			}
			idx.byExternal[key] = item.EntryID
		}

		title := NormalizeTitle(item.Title)
		if title == "" {
			continue
		}
		idx.titles = append(idx.titles, Candidate{EntryID: item.EntryID, Title: title, Year: item.Year})

		key := titleYearKey(title, item.Year)
		if owner, taken := idx.byTitleYear[key]; taken {
			idx.collisions++
			logger.Warn("title/year collision",
				zap.String("key", key),
				zap.String("kept", owner),
				zap.String("ignored", item.EntryID))
			continue
		}
		idx.byTitleYear[key] = item.EntryID
	}

	return idx
}

// LookupByExternalID returns the entry holding a provider identifier.
func (idx *Index) LookupByExternalID(namespace, id string) (string, bool) {
	if strings.TrimSpace(id) == "" {
		return "", false
	}
	entry, ok := idx.byExternal[externalKey(namespace, id)]
	return entry, ok
}

// LookupByTitleYear returns the entry whose normalized title and year match exactly.
// A year of 0 only matches entries without a year.
func (idx *Index) LookupByTitleYear(title string, year int) (string, bool) {
	normalized := NormalizeTitle(title)
	if normalized == "" {
		return "", false
	}
	entry, ok := idx.byTitleYear[titleYearKey(normalized, year)]
	return entry, ok
}

// Candidates returns the fuzzy candidates for a desired year.
// With a known year only entries with a known year within tolerance qualify;
// with an unknown year every titled entry is a candidate.
func (idx *Index) Candidates(year, tolerance int) []Candidate {
	if year <= 0 {
		return slices.Clone(idx.titles)
	}
	if tolerance < 0 {
		tolerance = 0
	}
	out := make([]Candidate, 0)
	for _, t := range idx.titles {
		if t.Year <= 0 {
			continue
		}
		d := t.Year - year
		if d < 0 {
			d = -d
		}
		if d <= tolerance {
			out = append(out, t)
		}
	}
	return out
}

// Contains reports whether an entry id belongs to the snapshot.
func (idx *Index) Contains(entryID string) bool {
	_, ok := idx.entries[entryID]
	return ok
}

// Item returns the snapshot entry for an id.
func (idx *Index) Item(entryID string) (LibraryItem, bool) {
	item, ok := idx.entries[entryID]
	return item, ok
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Collisions returns how many keys were dropped while building the index.
func (idx *Index) Collisions() int {
	return idx.collisions
}
