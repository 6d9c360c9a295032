// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures either an embedded SQLite file (the default) or a MySQL
// server, based on the application's configuration. The run history feature is the
// main consumer.
//
// # Connect
//
// Connect opens the configured driver, tunes the connection pool and pings the
// database so configuration mistakes surface at startup.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for both dialects, and MissingColumns
// checks a migrated table against the columns a store expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "run_records", []string{"id", "state"})
package database
