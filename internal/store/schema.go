package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scheduled_jobs (
		job_name          TEXT    PRIMARY KEY,
		company           TEXT    NOT NULL,
		date_from         TEXT,
		date_to           TEXT,
		model             TEXT    NOT NULL,
		cron_schedule     TEXT    NOT NULL,
		enabled           INTEGER NOT NULL DEFAULT 1,
		report_limit      INTEGER NOT NULL DEFAULT 5,
		report_types      TEXT,
		report_categories TEXT,
		description       TEXT    NOT NULL DEFAULT '',
		last_run          TEXT,
		next_run          TEXT,
		run_count         INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT    NOT NULL,
		updated_at        TEXT    NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS job_executions (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		job_name            TEXT    NOT NULL,
		status              TEXT    NOT NULL,
		started_at          TEXT    NOT NULL,
		finished_at         TEXT,
		duration_seconds    INTEGER,
		reports_found       INTEGER NOT NULL DEFAULT 0,
		documents_processed INTEGER NOT NULL DEFAULT 0,
		error_message       TEXT,
		log_file_path       TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_executions_job ON job_executions(job_name, started_at)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("store: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("store: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("store: record schema version: %w", err)
	}

	return nil
}
