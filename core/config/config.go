package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"collection-manager/core/database"
	"collection-manager/core/logger"
	"collection-manager/core/reconcile"
	"collection-manager/core/server"
	"collection-manager/core/storage"
	"collection-manager/feature/arr"
	"collection-manager/feature/jellyfin"
	"collection-manager/feature/notify"
	"collection-manager/feature/providers"
	"collection-manager/feature/scheduler"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP API.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run history database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the report archive (S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Jellyfin is the media server being reconciled.
	Jellyfin jellyfin.Config `mapstructure:"jellyfin"`
	// TMDb and Trakt provide the desired titles.
	TMDb  providers.TMDbConfig  `mapstructure:"tmdb"`
	Trakt providers.TraktConfig `mapstructure:"trakt"`
	// Radarr and Sonarr receive unmatched titles.
	Radarr arr.Config `mapstructure:"radarr"`
	Sonarr arr.Config `mapstructure:"sonarr"`
	// Discord receives run notifications.
	Discord notify.Config `mapstructure:"discord"`
	// Matching tunes the media matcher.
	Matching reconcile.Settings `mapstructure:"matching"`
	// Sync holds run settings.
	Sync SyncConfig `mapstructure:"sync"`
	// Scheduler holds the daemon schedule.
	Scheduler scheduler.Config `mapstructure:"scheduler"`
}

// SyncConfig holds run settings.
type SyncConfig struct {
	// CollectionsPath is the collection definitions file.
	CollectionsPath string `mapstructure:"collections_path" default:"config/collections.yml"`
	// DryRun makes every run compute diffs without applying them.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// Concurrency bounds parallel library and collection fetches.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// LockFile guards against concurrent runs across processes. Empty disables it.
	LockFile string `mapstructure:"lock_file" default:"data/collection-manager.lock"`
	// RetentionDays prunes stored and archived reports older than this. Zero keeps everything.
	RetentionDays int `mapstructure:"retention_days" default:"0"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. JELLYFIN_URL -> jellyfin.url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Jellyfin.URL == "" {
		errs = append(errs, errors.New("jellyfin.url is required"))
	}
	if c.Jellyfin.APIKey == "" {
		errs = append(errs, errors.New("jellyfin.api_key is required"))
	}
	if _, err := c.Matching.MatchConfig(); err != nil {
		errs = append(errs, err)
	}
	if c.Scheduler.Enabled {
		if _, _, err := scheduler.ParseRunAt(c.Scheduler.RunAt); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}
	if c.Database.Enabled && c.Database.Driver != database.DriverSQLite && c.Database.Driver != database.DriverMySQL {
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Sync.CollectionsPath == "" {
		errs = append(errs, errors.New("sync.collections_path is required"))
	}
	if c.Sync.Concurrency < 0 {
		errs = append(errs, errors.New("sync.concurrency must not be negative"))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
