// Package migrations embeds the onboarding SQLite schema.
package migrations

import "embed"

// FS holds the ordered onboarding migration files.
//
//go:embed *.sql
var FS embed.FS
