// Package db holds the SQL migrations of the audit log.
package db

import "embed"

// Migrations contains migrations/*.sql in goose format.
//
//go:embed migrations/*.sql
var Migrations embed.FS
