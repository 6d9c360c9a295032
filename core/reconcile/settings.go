package reconcile

import "fmt"

// Settings is the configuration file form of MatchConfig.
type Settings struct {
	Scorer         string   `mapstructure:"scorer" default:"levenshtein"`
	FuzzyThreshold float64  `mapstructure:"fuzzy_threshold" default:"0.85"`
	FuzzyMargin    float64  `mapstructure:"fuzzy_margin" default:"0.05"`
	YearTolerance  int      `mapstructure:"year_tolerance" default:"1"`
	IDPriority     []string `mapstructure:"id_priority" default:"tmdb,imdb,tvdb"`
}

// MatchConfig resolves the scorer and validates the bounds.
func (s Settings) MatchConfig() (MatchConfig, error) {
	scorer, err := NewScorer(s.Scorer)
	if err != nil {
		return MatchConfig{}, err
	}
	cfg := MatchConfig{
		Scorer:         scorer,
		FuzzyThreshold: s.FuzzyThreshold,
		FuzzyMargin:    s.FuzzyMargin,
		YearTolerance:  s.YearTolerance,
		IDPriority:     s.IDPriority,
	}.withDefaults()
	if err := cfg.Validate(); err != nil {
		return MatchConfig{}, fmt.Errorf("matching: %w", err)
	}
	return cfg, nil
}
