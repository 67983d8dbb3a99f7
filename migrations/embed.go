// Package migrations embeds the SQL schema migrations into the binary.
//
// Files are named YYYYMMDD_HHMMSS_description.{up,down}.sql and sit at the
// root of FS:
//
//	db.Migrate(ctx, migrations.FS)
package migrations

import "embed"

// FS holds every migration file.
//
//go:embed *.sql
var FS embed.FS
