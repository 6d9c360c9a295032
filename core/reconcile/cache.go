package reconcile

// CacheStats counts cache traffic for one run.
type CacheStats struct {
	// Entries is the number of memoized results.
	Entries int `json:"entries"`

	// Hits is the number of lookups answered from the cache.
	Hits int `json:"hits"`

	// Misses is the number of lookups that had to consult the index.
	Misses int `json:"misses"`
}

// MatchCache memoizes match results for a single run and a single library snapshot.
//
// A MatchCache is created together with its Index and must be dropped with it:
// results cached against an older snapshot would keep reporting items as missing
// after they were added to the library. It is not safe for concurrent use; the
// engine matches one collection at a time.
type MatchCache struct {
	entries map[string]MatchResult
	stats   CacheStats
}

// NewMatchCache creates an empty cache.
func NewMatchCache() *MatchCache {
	return &MatchCache{entries: make(map[string]MatchResult)}
}

// Get returns the memoized result for a key.
func (c *MatchCache) Get(key string) (MatchResult, bool) {
	r, ok := c.entries[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return r, ok
}

// Put memoizes a result.
func (c *MatchCache) Put(key string, r MatchResult) {
	c.entries[key] = r
}

// Len returns the number of memoized results.
func (c *MatchCache) Len() int {
	return len(c.entries)
}

// Stats returns the traffic counters.
func (c *MatchCache) Stats() CacheStats {
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
