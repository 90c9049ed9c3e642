package catalog

import "embed"

// Migrations holds the PostgreSQL schema for the catalog tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"
