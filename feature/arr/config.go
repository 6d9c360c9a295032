package arr

import "time"

// Config holds the settings of one Radarr or Sonarr instance.
type Config struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	RootFolder     string `mapstructure:"root_folder"`
	QualityProfile string `mapstructure:"quality_profile" default:"HD-1080p"`
	DefaultTag     string `mapstructure:"default_tag" default:"collection-manager"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}

// Enabled reports whether the instance is configured.
func (c Config) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
