package postgres

import (
	"context"
	"database/sql"
)

// Schema is written to the portable subset shared by Postgres and the SQLite
// test harness. Production deployments run the same statements through the
// pgx driver at startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               TEXT PRIMARY KEY,
		email            TEXT NOT NULL UNIQUE,
		username         TEXT UNIQUE,
		display_name     TEXT NOT NULL DEFAULT '',
		sign_in_method   TEXT NOT NULL,
		status           TEXT NOT NULL,
		external_id      TEXT NOT NULL UNIQUE,
		version          INTEGER NOT NULL,
		created_at       TIMESTAMP NOT NULL,
		created_by       TEXT,
		last_modified_at TIMESTAMP,
		last_modified_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL UNIQUE,
		description      TEXT NOT NULL DEFAULT '',
		version          INTEGER NOT NULL,
		created_at       TIMESTAMP NOT NULL,
		created_by       TEXT,
		last_modified_at TIMESTAMP,
		last_modified_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		code        TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS user_group_roles (
		group_id  TEXT NOT NULL,
		role_code TEXT NOT NULL,
		PRIMARY KEY (group_id, role_code)
	)`,
	`CREATE TABLE IF NOT EXISTS user_group_users (
		group_id TEXT NOT NULL,
		user_id  TEXT NOT NULL,
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS domain_events (
		id             TEXT PRIMARY KEY,
		aggregate_id   TEXT NOT NULL,
		aggregate_name TEXT NOT NULL,
		kind           TEXT NOT NULL,
		data           TEXT NOT NULL DEFAULT '{}',
		occurred_at    TIMESTAMP NOT NULL,
		ord            INTEGER NOT NULL,
		publish_status TEXT NOT NULL DEFAULT 'pending',
		published_at   TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_domain_events_aggregate
		ON domain_events (aggregate_id, occurred_at, ord)`,
	`CREATE TABLE IF NOT EXISTS pending_deletions (
		aggregate_id   TEXT PRIMARY KEY,
		aggregate_name TEXT NOT NULL,
		requested_at   TIMESTAMP NOT NULL,
		requested_by   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS identities (
		external_id   TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
