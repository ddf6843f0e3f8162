// Package migrations bundles the SQL schema migrations applied by golang-migrate.
package migrations

import "embed"

// FS holds the *.up.sql / *.down.sql files of this directory.
//
//go:embed *.sql
var FS embed.FS
