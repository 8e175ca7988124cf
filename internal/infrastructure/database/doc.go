// Package database provides the SQLite store for the OSC router's
// diagnostics history.
//
// This package manages:
//   - The connection, opened in WAL mode with a busy timeout
//   - Schema migrations read from an fs.FS (normally the embedded
//     migrations package)
//   - Health checks for the status API
//
// Only one connection is kept open: SQLite serialises writers, and the
// drop-event sink is the single writer in this process.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named NNNN_description.up.sql with an optional
// NNNN_description.down.sql. Versions apply in ascending numeric order,
// each in its own transaction.
package database
