package postgres

import (
	"context"
	"fmt"
)

// migrations is the ordered list of idempotent DDL statements.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS lifecycle_jobs (
		id               TEXT PRIMARY KEY,
		type             TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending',
		ui_status        TEXT NOT NULL DEFAULT '',
		data             JSONB,
		created_by       TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		ttl              BIGINT NOT NULL DEFAULT 0,
		total_units      INTEGER NOT NULL DEFAULT 0,
		done_units       INTEGER NOT NULL DEFAULT 0,
		percent_override INTEGER,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lifecycle_jobs_status ON lifecycle_jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_lifecycle_jobs_type ON lifecycle_jobs (type)`,
	`CREATE INDEX IF NOT EXISTS idx_lifecycle_jobs_created_at ON lifecycle_jobs (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS lifecycle_diagnostics (
		id         TEXT PRIMARY KEY,
		job_id     TEXT NOT NULL REFERENCES lifecycle_jobs (id) ON DELETE CASCADE,
		severity   TEXT NOT NULL,
		message    TEXT NOT NULL,
		details    JSONB,
		stage      TEXT NOT NULL DEFAULT '',
		step       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lifecycle_diagnostics_job_id ON lifecycle_diagnostics (job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lifecycle_diagnostics_severity ON lifecycle_diagnostics (job_id, severity)`,
}

// Migrate creates the schema. Every statement is idempotent, so
// repeated calls are safe.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("lifecycle/postgres: migrate: %w", err)
		}
	}
	return nil
}
