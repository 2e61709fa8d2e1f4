// Package migrations embeds the SQL schema migrations for eyy.db.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
