package reconcile

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Scorer names accepted by NewScorer.
const (
	ScorerLevenshtein = "levenshtein"
	ScorerJaroWinkler = "jaro_winkler"
	ScorerJaccard     = "jaccard"
)

// Scorer rates the similarity of two normalized titles in [0, 1].
type Scorer interface {
	Score(a, b string) float64
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(a, b string) float64

// Score calls f(a, b).
func (f ScorerFunc) Score(a, b string) float64 {
	return f(a, b)
}

// NewScorer returns the edlib-backed scorer for a configured name.
// An empty name selects Levenshtein.
func NewScorer(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScorerLevenshtein:
		return edlibScorer{algorithm: edlib.Levenshtein}, nil
	case ScorerJaroWinkler:
		return edlibScorer{algorithm: edlib.JaroWinkler}, nil
	case ScorerJaccard:
		return edlibScorer{algorithm: edlib.Jaccard}, nil
	default:
		return nil, fmt.Errorf("unknown scorer %q", name)
	}
}

type edlibScorer struct {
	algorithm edlib.Algorithm
}

func (s edlibScorer) Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(a, b, s.algorithm)
	if err != nil {
		return 0
	}
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return float64(sim)
}
