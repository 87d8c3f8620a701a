// Package migrations embeds the SQL migration files of every dialect.
package migrations

import "embed"

// FS holds one directory of numbered *.up.sql files per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
