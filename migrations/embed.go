// Package migrations embeds the SQL schema migrations into the binary.
package migrations

import "embed"

// FS holds the *.up.sql / *.down.sql files at its root.
//
//go:embed *.sql
var FS embed.FS
