// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, tunes the connection pool and verifies the
// connection with a bounded ping. SQLite connections are pinned to a single open
// connection because SQLite serializes writers.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the integrity feature verify that the
// tables used by the sync pipeline carry the columns the code expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "bans", []string{"id", "list_id"})
package database
