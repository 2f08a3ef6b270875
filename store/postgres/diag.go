package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
)

// AppendDiagnostic persists an entry. Diagnostics are append-only.
func (s *Store) AppendDiagnostic(ctx context.Context, e *diag.Entry) error {
	var details []byte
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("lifecycle/postgres: marshal diagnostic details: %w", err)
		}
		details = raw
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO lifecycle_diagnostics (
			id, job_id, severity, message, details, stage, step,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID.String(), e.JobID.String(), string(e.Severity), e.Message,
		details, e.Stage, e.Step, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("lifecycle/postgres: append diagnostic: %w", err)
	}
	return nil
}

// ListDiagnostics returns a job's entries matching opts in append
// order.
func (s *Store) ListDiagnostics(ctx context.Context, jobID id.JobID, opts diag.ListOpts) ([]*diag.Entry, error) {
	query := `SELECT id, job_id, severity, message, details, stage, step,
		created_at, updated_at
		FROM lifecycle_diagnostics WHERE job_id = $1`
	args := []any{jobID.String()}

	if opts.Severity != "" {
		args = append(args, string(opts.Severity))
		query += fmt.Sprintf(" AND severity = $%d", len(args))
	}
	if opts.Stage != "" {
		args = append(args, opts.Stage)
		query += fmt.Sprintf(" AND stage = $%d", len(args))
	}
	if opts.Step != "" {
		args = append(args, opts.Step)
		query += fmt.Sprintf(" AND step = $%d", len(args))
	}
	query += " ORDER BY created_at ASC, id ASC"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lifecycle/postgres: list diagnostics: %w", err)
	}
	defer rows.Close()

	var entries []*diag.Entry
	for rows.Next() {
		var (
			rawID    string
			rawJobID string
			severity string
			details  []byte
			e        diag.Entry
		)
		if err := rows.Scan(
			&rawID, &rawJobID, &severity, &e.Message, &details,
			&e.Stage, &e.Step, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("lifecycle/postgres: list diagnostics scan: %w", err)
		}

		parsedID, err := id.ParseDiagnosticID(rawID)
		if err != nil {
			return nil, fmt.Errorf("lifecycle/postgres: parse diagnostic id %q: %w", rawID, err)
		}
		parsedJobID, err := id.ParseJobID(rawJobID)
		if err != nil {
			return nil, fmt.Errorf("lifecycle/postgres: parse job id %q: %w", rawJobID, err)
		}
		e.ID = parsedID
		e.JobID = parsedJobID
		e.Severity = diag.Severity(severity)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("lifecycle/postgres: unmarshal diagnostic details: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountDiagnostics counts a job's entries of the given severity. An
// empty severity counts everything.
func (s *Store) CountDiagnostics(ctx context.Context, jobID id.JobID, severity diag.Severity) (int64, error) {
	query := `SELECT COUNT(*) FROM lifecycle_diagnostics WHERE job_id = $1`
	args := []any{jobID.String()}
	if severity != "" {
		args = append(args, string(severity))
		query += fmt.Sprintf(" AND severity = $%d", len(args))
	}

	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("lifecycle/postgres: count diagnostics: %w", err)
	}
	return n, nil
}
