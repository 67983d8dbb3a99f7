// Package database provides SQLite connectivity for run history and the
// audit log.
//
// This package manages:
//   - A single-connection pool (SQLite has one writer)
//   - WAL mode and busy timeout for file-backed databases
//   - In-memory databases (MemoryPath) for tests and dry runs
//   - Versioned schema migrations read from any fs.FS
//
// Usage:
//
//	db, err := database.Open(database.FromConfig(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are files named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Each one is applied in its own transaction
// and recorded in the schema_migrations table.
package database
