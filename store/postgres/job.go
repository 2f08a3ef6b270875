package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
)

const jobColumns = `id, type, status, ui_status, data, created_by, description,
	ttl, total_units, done_units, percent_override, created_at, updated_at`

// CreateJob persists a new job.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lifecycle_jobs (
			id, type, status, ui_status, data, created_by, description,
			ttl, total_units, done_units, percent_override, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13
		)`,
		j.ID.String(), j.Type, string(j.Status), j.UIStatus, []byte(j.Data),
		j.CreatedBy, j.Description,
		j.TTL.Nanoseconds(), j.Progress.TotalUnits, j.Progress.DoneUnits,
		j.Progress.PercentOverride, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return lifecycle.ErrJobAlreadyExists
		}
		return fmt.Errorf("lifecycle/postgres: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM lifecycle_jobs WHERE id = $1`,
		jobID.String(),
	)
	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, lifecycle.ErrJobNotFound
		}
		return nil, fmt.Errorf("lifecycle/postgres: get job: %w", err)
	}
	return j, nil
}

// UpdateJob persists changes to an existing job.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE lifecycle_jobs SET
			type = $2, status = $3, ui_status = $4, data = $5,
			created_by = $6, description = $7, ttl = $8,
			total_units = $9, done_units = $10, percent_override = $11,
			updated_at = $12
		WHERE id = $1`,
		j.ID.String(), j.Type, string(j.Status), j.UIStatus, []byte(j.Data),
		j.CreatedBy, j.Description, j.TTL.Nanoseconds(),
		j.Progress.TotalUnits, j.Progress.DoneUnits, j.Progress.PercentOverride,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("lifecycle/postgres: update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.ErrJobNotFound
	}
	return nil
}

// RefreshJob reloads the stored record into j in place.
func (s *Store) RefreshJob(ctx context.Context, j *job.Job) error {
	fresh, err := s.GetJob(ctx, j.ID)
	if err != nil {
		return err
	}
	*j = *fresh
	return nil
}

// ListJobs returns jobs matching opts, newest first.
func (s *Store) ListJobs(ctx context.Context, opts job.ListOpts) ([]*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM lifecycle_jobs WHERE 1=1`
	args := []any{}

	if opts.Status != "" {
		args = append(args, string(opts.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id ASC"
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
		return nil, fmt.Errorf("lifecycle/postgres: list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		j, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("lifecycle/postgres: list jobs scan: %w", scanErr)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job by ID. Its diagnostics go with it through the
// foreign key cascade.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM lifecycle_jobs WHERE id = $1`, jobID.String(),
	)
	if err != nil {
		return fmt.Errorf("lifecycle/postgres: delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.ErrJobNotFound
	}
	return nil
}

// scanJob reads one job row.
func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		rawID    string
		status   string
		data     []byte
		ttl      int64
		override *int
		j        job.Job
	)
	err := row.Scan(
		&rawID, &j.Type, &status, &j.UIStatus, &data, &j.CreatedBy,
		&j.Description, &ttl, &j.Progress.TotalUnits, &j.Progress.DoneUnits,
		&override, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, err := id.ParseJobID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse job id %q: %w", rawID, err)
	}
	j.ID = parsedID
	j.Status = job.Status(status)
	j.Data = data
	j.TTL = time.Duration(ttl)
	j.Progress.PercentOverride = override
	return &j, nil
}
