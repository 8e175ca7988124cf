// Package migrations embeds the SQL schema so the binary can migrate its
// database without the files on disk.
package migrations

import "embed"

// FS holds every *.sql file in this directory. Pass it to
// database.DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
