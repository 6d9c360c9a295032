package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Default fuzzy matching parameters.
const (
	DefaultFuzzyThreshold = 0.85
	DefaultFuzzyMargin    = 0.05
	DefaultYearTolerance  = 1
)

// DefaultIDPriority is the namespace order tried by the exact_id resolver.
var DefaultIDPriority = []string{NamespaceTMDb, NamespaceIMDb, NamespaceTVDb}

// MatchConfig tunes the matcher.
type MatchConfig struct {
	// Scorer rates fuzzy candidates. Nil selects Levenshtein.
	Scorer Scorer

	// FuzzyThreshold is the minimum score the best fuzzy candidate needs. It is
	// inclusive so that a threshold of 1 still accepts a perfect score.
	FuzzyThreshold float64

	// FuzzyMargin is the minimum lead the best candidate needs over every other one.
	FuzzyMargin float64

	// YearTolerance is the allowed distance in years for fuzzy candidates.
	YearTolerance int

	// IDPriority orders the provider namespaces for exact matching.
	IDPriority []string
}

// DefaultMatchConfig returns the stock matching parameters.
func DefaultMatchConfig() MatchConfig {
	scorer, _ := NewScorer(ScorerLevenshtein)
	return MatchConfig{
		Scorer:         scorer,
		FuzzyThreshold: DefaultFuzzyThreshold,
		FuzzyMargin:    DefaultFuzzyMargin,
		YearTolerance:  DefaultYearTolerance,
		IDPriority:     append([]string(nil), DefaultIDPriority...),
	}
}

// Validate checks the numeric bounds.
func (c MatchConfig) Validate() error {
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1], got %v", c.FuzzyThreshold)
	}
	if c.FuzzyMargin < 0 || c.FuzzyMargin >= 1 {
		return fmt.Errorf("fuzzy margin must be in [0, 1), got %v", c.FuzzyMargin)
	}
	if c.YearTolerance < 0 {
		return fmt.Errorf("year tolerance must not be negative, got %d", c.YearTolerance)
	}
	return nil
}

func (c MatchConfig) withDefaults() MatchConfig {
	if c.Scorer == nil {
		c.Scorer, _ = NewScorer(ScorerLevenshtein)
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	priority := c.IDPriority
	if len(priority) == 0 {
		priority = DefaultIDPriority
	}
	c.IDPriority = make([]string, 0, len(priority))
	for _, ns := range priority {
		if ns = strings.ToLower(strings.TrimSpace(ns)); ns != "" {
			c.IDPriority = append(c.IDPriority, ns)
		}
	}
	return c
}

// query is a desired item prepared for the resolvers.
type query struct {
	item  DesiredItem
	title string
	tyKey string
}

// resolver is one tier of the matching cascade. It returns ok=false to defer to
// the next tier.
type resolver interface {
	resolve(m *Matcher, q query) (MatchResult, bool)
}

// Matcher resolves desired items against one Index.
type Matcher struct {
	index     *Index
	cache     *MatchCache
	cfg       MatchConfig
	resolvers []resolver
}

// NewMatcher creates a matcher over an index. The cache must belong to the same
// snapshot as the index; a nil cache gets a fresh one.
func NewMatcher(index *Index, cache *MatchCache, cfg MatchConfig) *Matcher {
	if cache == nil {
		cache = NewMatchCache()
	}
	return &Matcher{
		index: index,
		cache: cache,
		cfg:   cfg.withDefaults(),
		resolvers: []resolver{
			exactIDResolver{},
			titleYearResolver{},
			fuzzyTitleResolver{},
		},
	}
}

// Match resolves a desired item. The result is deterministic for a given index
// and configuration, and a matched EntryID always belongs to the index.
//
// Each tier caches only what it looked up itself: "ext:" keys hold exact id
// lookups and the "ty:" key holds the title tiers. A result from a later tier is
// never stored under an external id key.
func (m *Matcher) Match(item DesiredItem) MatchResult {
	title := NormalizeTitle(item.Title)
	q := query{item: item, title: title, tyKey: titleYearKey(title, item.Year)}

	for _, r := range m.resolvers {
		if res, ok := r.resolve(m, q); ok {
			return res
		}
	}
	return Unmatched(ReasonNoCandidate)
}

// Cache returns the matcher's cache.
func (m *Matcher) Cache() *MatchCache {
	return m.cache
}

// exactIDResolver looks up every external id in priority order.
type exactIDResolver struct{}

func (exactIDResolver) resolve(m *Matcher, q query) (MatchResult, bool) {
	for _, ns := range m.cfg.IDPriority {
		id, ok := q.item.ExternalID(ns)
		if !ok {
			continue
		}
		key := externalKey(ns, id)
		if cached, hit := m.cache.Get(key); hit {
			if cached.Matched {
				return cached, true
			}
			continue
		}
		entry, found := m.index.LookupByExternalID(ns, id)
		if !found {
			m.cache.Put(key, Unmatched(ReasonNoCandidate))
			continue
		}
		res := Matched(entry, MatchedByExactID)
		m.cache.Put(key, res)
		return res, true
	}
	return MatchResult{}, false
}

// titleYearResolver matches the normalized title and year exactly.
type titleYearResolver struct{}

func (titleYearResolver) resolve(m *Matcher, q query) (MatchResult, bool) {
	if q.title == "" {
		return MatchResult{}, false
	}
	if cached, hit := m.cache.Get(q.tyKey); hit {
		return cached, true
	}
	if entry, found := m.index.LookupByTitleYear(q.item.Title, q.item.Year); found {
		res := Matched(entry, MatchedByTitleYear)
		m.cache.Put(q.tyKey, res)
		return res, true
	}
	return MatchResult{}, false
}

// fuzzyTitleResolver picks the best scoring candidate within the year tolerance.
// It always resolves, so it must stay last.
type fuzzyTitleResolver struct{}

func (fuzzyTitleResolver) resolve(m *Matcher, q query) (MatchResult, bool) {
	res := m.fuzzy(q)
	if q.title != "" {
		m.cache.Put(q.tyKey, res)
	}
	return res, true
}

type scoredCandidate struct {
	entryID string
	score   float64
}

func (m *Matcher) fuzzy(q query) MatchResult {
	if q.title == "" {
		return Unmatched(ReasonNoCandidate)
	}

	candidates := m.index.Candidates(q.item.Year, m.cfg.YearTolerance)
	if len(candidates) == 0 {
		return Unmatched(ReasonNoCandidate)
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoredCandidate{entryID: c.EntryID, score: m.cfg.Scorer.Score(q.title, c.Title)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].entryID < scored[j].entryID
	})

	best := scored[0]
	if best.score < m.cfg.FuzzyThreshold {
		res := Unmatched(ReasonNoCandidate)
		res.Score = best.score
		return res
	}

	tied := []string{best.entryID}
	for _, c := range scored[1:] {
		if c.score < best.score-m.cfg.FuzzyMargin {
			break
		}
		tied = append(tied, c.entryID)
	}
	if len(tied) > 1 {
		res := Unmatched(ReasonAmbiguous)
		res.Score = best.score
		res.Candidates = tied
		return res
	}

	res := Matched(best.entryID, MatchedByFuzzyTitle)
	res.Score = best.score
	return res
}
