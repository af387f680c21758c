// Package migrations embeds the versioned PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Path is the directory within FS holding the migration files.
const Path = "."
