package jellyfin

import "time"

// Config holds the Jellyfin connection settings.
type Config struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	PageSize       int    `mapstructure:"page_size" default:"200"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
	Retries        int    `mapstructure:"retries" default:"3"`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
