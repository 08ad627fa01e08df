package migrations

import "embed"

// FS holds the catalog schema migrations.
//
//go:embed *.sql
var FS embed.FS
