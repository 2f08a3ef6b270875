package bunstore

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
)

// CreateJob persists a new job.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	m := toJobModel(j)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return lifecycle.ErrJobAlreadyExists
		}
		return fmt.Errorf("lifecycle/bun: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	m := new(jobModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", jobID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, lifecycle.ErrJobNotFound
		}
		return nil, fmt.Errorf("lifecycle/bun: get job: %w", err)
	}
	return fromJobModel(m)
}

// UpdateJob persists changes to an existing job.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	m := toJobModel(j)
	m.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("lifecycle/bun: update job: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
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
	var models []jobModel
	q := s.db.NewSelect().Model(&models)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Type != "" {
		q = q.Where("type = ?", opts.Type)
	}
	q = q.OrderExpr("created_at DESC, id ASC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("lifecycle/bun: list jobs: %w", err)
	}

	jobs := make([]*job.Job, 0, len(models))
	for i := range models {
		j, convErr := fromJobModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// DeleteJob removes a job by ID. Its diagnostics go with it through the
// foreign key cascade.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	res, err := s.db.NewDelete().
		TableExpr("lifecycle_jobs").
		Where("id = ?", jobID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lifecycle/bun: delete job: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return lifecycle.ErrJobNotFound
	}
	return nil
}
