package collections

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	validCharts  = map[string]bool{"watched": true, "trending": true, "popular": true}
	validPeriods = map[string]bool{"": true, "daily": true, "weekly": true, "monthly": true, "yearly": true, "all": true}
)

// Load reads and validates a definitions file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collections file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates definitions. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate reports every problem in the file at once.
func (f *File) Validate() error {
	var errs []error
	if len(f.Libraries) == 0 {
		errs = append(errs, errors.New("no libraries defined"))
	}

	libraries := make(map[string]bool)
	for i, l := range f.Libraries {
		where := fmt.Sprintf("libraries[%d]", i)
		if strings.TrimSpace(l.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		} else {
			where = fmt.Sprintf("library %q", l.Name)
			if libraries[l.Name] {
				errs = append(errs, fmt.Errorf("%s: defined twice", where))
			}
			libraries[l.Name] = true
		}
		switch strings.ToLower(strings.TrimSpace(l.Type)) {
		case "", "movie", "movies", "series", "show", "shows", "tv":
		default:
			errs = append(errs, fmt.Errorf("%s: unknown type %q", where, l.Type))
		}

		names := make(map[string]bool)
		for j, c := range l.Collections {
			cwhere := fmt.Sprintf("%s collections[%d]", where, j)
			if strings.TrimSpace(c.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: name is required", cwhere))
			} else {
				cwhere = fmt.Sprintf("%s collection %q", where, c.Name)
				if names[c.Name] {
					errs = append(errs, fmt.Errorf("%s: defined twice", cwhere))
				}
				names[c.Name] = true
			}
			errs = append(errs, c.validate(cwhere)...)
		}
	}
	return errors.Join(errs...)
}

func (c Collection) validate(where string) []error {
	var errs []error
	if !c.HasFeeds() {
		errs = append(errs, fmt.Errorf("%s: no feed or items configured", where))
	}
	if _, err := ParseSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", where, err))
	}
	for name, v := range map[string]int{
		"tmdb_trending_weekly": c.TMDbTrendingWeekly,
		"tmdb_trending_daily":  c.TMDbTrendingDaily,
		"tmdb_popular":         c.TMDbPopular,
		"trakt_trending":       c.TraktTrending,
		"trakt_popular":        c.TraktPopular,
		"limit":                c.Limit,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: %s must not be negative", where, name))
		}
	}
	if c.TraktChart != nil {
		if !validCharts[strings.ToLower(c.TraktChart.Chart)] {
			errs = append(errs, fmt.Errorf("%s: unknown trakt chart %q", where, c.TraktChart.Chart))
		}
		if !validPeriods[strings.ToLower(c.TraktChart.TimePeriod)] {
			errs = append(errs, fmt.Errorf("%s: unknown trakt time period %q", where, c.TraktChart.TimePeriod))
		}
	}
	for k, item := range c.Items {
		if len(item.ExternalIDs()) == 0 && strings.TrimSpace(item.Title) == "" {
			errs = append(errs, fmt.Errorf("%s items[%d]: needs an id or a title", where, k))
		}
	}
	if f := c.Filters; f.YearGTE > 0 && f.YearLTE > 0 && f.YearGTE > f.YearLTE {
		errs = append(errs, fmt.Errorf("%s: year_gte is after year_lte", where))
	}
	return errs
}
