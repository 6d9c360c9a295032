// Package config provides configuration management for the Collection Manager.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each
// section, registered by reflection so every key can be overridden from the
// environment (JELLYFIN_URL sets jellyfin.url).
//
// # Configuration Structure
//
//   - Server: HTTP API settings (host, port, API key)
//   - Log: logging level and format
//   - Database: run history database (sqlite or mysql)
//   - Storage: S3/MinIO report archive
//   - Jellyfin, TMDb, Trakt, Radarr, Sonarr, Discord: external services
//   - Matching: fuzzy matching parameters
//   - Sync: collection definitions path, dry run, concurrency, lock file
//   - Scheduler: daily run time and timezone
//
// The collection definitions themselves live in a YAML file loaded by the
// collections feature.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
