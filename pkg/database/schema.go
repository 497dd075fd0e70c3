package database

import (
	"context"
	"fmt"
)

// schemaStatements create the tables used by the identity provider,
// the profile store and the screenshot record store.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS app`,
	`CREATE TABLE IF NOT EXISTS app.users (
		uid           TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		username      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS app.password_resets (
		token      TEXT PRIMARY KEY,
		uid        TEXT NOT NULL REFERENCES app.users(uid) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS app.user_profiles (
		uid        TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS app.screenshots (
		id            TEXT PRIMARY KEY,
		type          TEXT NOT NULL,
		filename      TEXT NOT NULL,
		object_key    TEXT NOT NULL,
		download_url  TEXT NOT NULL,
		account_login TEXT NOT NULL DEFAULT '',
		size_bytes    BIGINT NOT NULL DEFAULT 0,
		metadata      JSONB,
		taken_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_screenshots_taken_at ON app.screenshots (taken_at DESC)`,
}

// EnsureSchema creates the application tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
