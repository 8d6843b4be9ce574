// Package db provides embedded database schema and seed data files.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// DefaultMenu is the baseline dish catalog seeded on every process start.
//
//go:embed seed/menu.json
var DefaultMenu []byte
