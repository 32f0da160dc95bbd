// Package db holds the SQL schema of the billing tables as goose migrations.
package db

import "embed"

// MigrationsDir is the directory inside Migrations that holds the goose files.
const MigrationsDir = "migrations"

// Migrations embeds the goose migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
