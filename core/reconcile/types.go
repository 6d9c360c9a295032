package reconcile

import (
	"strings"
)

// Provider namespaces understood by the index and the matcher.
const (
	NamespaceTMDb = "tmdb"
	NamespaceIMDb = "imdb"
	NamespaceTVDb = "tvdb"
)

// MediaType is the kind of media a library holds.
type MediaType string

const (
	// MediaTypeMovie is a movie library.
	MediaTypeMovie MediaType = "movie"
	// MediaTypeSeries is a TV series library.
	MediaTypeSeries MediaType = "series"
)

// IdentifierKind names the resolver tier that produced a match.
type IdentifierKind string

const (
	// MatchedByExactID means a provider identifier was found in the index.
	MatchedByExactID IdentifierKind = "exact_id"
	// MatchedByTitleYear means the normalized title and year matched exactly.
	MatchedByTitleYear IdentifierKind = "title_year"
	// MatchedByFuzzyTitle means the best fuzzy candidate was accepted.
	MatchedByFuzzyTitle IdentifierKind = "fuzzy_title"
)

// UnmatchedReason explains why a desired item has no library entry.
type UnmatchedReason string

const (
	// ReasonNoCandidate means no resolver produced an acceptable candidate.
	ReasonNoCandidate UnmatchedReason = "no_candidate"
	// ReasonAmbiguous means several fuzzy candidates scored too close to pick one.
	ReasonAmbiguous UnmatchedReason = "ambiguous"
)

// LibraryItem is one catalog entry of the media server, captured for a single run.
type LibraryItem struct {
	// EntryID is the server-native identifier. Unique within a snapshot.
	EntryID string `json:"entry_id"`

	// Title is the display title as stored on the server.
	Title string `json:"title"`

	// Year is the production year, 0 when unknown.
	Year int `json:"year,omitempty"`

	// ExternalIDs maps a provider namespace (tmdb, imdb, tvdb) to its identifier.
	ExternalIDs map[string]string `json:"external_ids,omitempty"`
}

// DesiredItem is a title a collection should contain.
type DesiredItem struct {
	// ExternalIDs maps a provider namespace to its identifier. May be empty.
	ExternalIDs map[string]string `json:"external_ids,omitempty"`

	// Title is the provider title.
	Title string `json:"title"`

	// Year is the release year, 0 when unknown.
	Year int `json:"year,omitempty"`

	// SourceRank is the position of the item in its provider ordering.
	SourceRank int `json:"source_rank"`

	// Source names the feed that produced the item (e.g. "tmdb_trending_weekly").
	Source string `json:"source,omitempty"`
}

// ExternalID returns the identifier for a namespace, if present.
func (d DesiredItem) ExternalID(namespace string) (string, bool) {
	id := strings.TrimSpace(d.ExternalIDs[namespace])
	return id, id != ""
}

// MatchResult is the outcome of resolving one desired item.
type MatchResult struct {
	// Matched reports whether EntryID is set.
	Matched bool `json:"matched"`

	// EntryID is the library entry the item resolved to.
	EntryID string `json:"entry_id,omitempty"`

	// MatchedBy is the resolver tier that produced the match.
	MatchedBy IdentifierKind `json:"matched_by,omitempty"`

	// Reason is set for unmatched results.
	Reason UnmatchedReason `json:"reason,omitempty"`

	// Score is the similarity of the best fuzzy candidate, if the fuzzy tier ran.
	Score float64 `json:"score,omitempty"`

	// Candidates lists the entry ids that tied for an ambiguous result.
	Candidates []string `json:"candidates,omitempty"`
}

// Matched builds a matched result.
func Matched(entryID string, by IdentifierKind) MatchResult {
	return MatchResult{Matched: true, EntryID: entryID, MatchedBy: by}
}

// Unmatched builds an unmatched result.
func Unmatched(reason UnmatchedReason) MatchResult {
	return MatchResult{Reason: reason}
}

// Membership is the set of entry ids currently in a collection.
type Membership map[string]struct{}

// NewMembership builds a membership set from entry ids.
func NewMembership(ids ...string) Membership {
	m := make(Membership, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = struct{}{}
		}
	}
	return m
}

// Has reports whether the entry id is a member.
func (m Membership) Has(id string) bool {
	_, ok := m[id]
	return ok
}

// CollectionMetadata holds the descriptive fields pushed to the server collection.
type CollectionMetadata struct {
	Summary   string `json:"summary,omitempty"`
	SortTitle string `json:"sort_title,omitempty"`
}

// IsZero reports whether no metadata is configured.
func (m CollectionMetadata) IsZero() bool {
	return m.Summary == "" && m.SortTitle == ""
}

// CollectionTarget describes one collection to reconcile.
type CollectionTarget struct {
	// Name is the collection name on the server.
	Name string `json:"name"`

	// Metadata is applied after a non-empty diff has been applied.
	Metadata CollectionMetadata `json:"metadata"`

	// AcquireMissing forwards no_candidate items to the acquisition forwarder.
	// Ambiguous items are left out: one of their candidates is likely already in
	// the library, so requesting them would duplicate it.
	AcquireMissing bool `json:"acquire_missing"`

	// Tags are passed along with acquisition requests.
	Tags []string `json:"tags,omitempty"`
}

// LibraryTarget groups the collections of one server library.
type LibraryTarget struct {
	Name        string             `json:"name"`
	MediaType   MediaType          `json:"media_type"`
	Collections []CollectionTarget `json:"collections"`
}

// RunRequest selects what a run reconciles.
type RunRequest struct {
	// RunID identifies the run. Generated when empty.
	RunID string

	// Libraries to reconcile. Every library is snapshotted before any matching starts.
	Libraries []LibraryTarget

	// DryRun computes diffs without mutating collections or forwarding items.
	DryRun bool

	// Scheduled marks runs started by the scheduler.
	Scheduled bool

	// Trigger describes who started the run (cli, api, scheduler).
	Trigger string
}

// AcquisitionRequest asks an acquisition manager to fetch a title.
type AcquisitionRequest struct {
	Item       DesiredItem `json:"item"`
	MediaType  MediaType   `json:"media_type"`
	Library    string      `json:"library"`
	Collection string      `json:"collection"`
	Tags       []string    `json:"tags,omitempty"`
}
