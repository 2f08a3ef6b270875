package bunstore

import (
	"context"
	"fmt"

	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
)

// AppendDiagnostic persists an entry. Diagnostics are append-only.
func (s *Store) AppendDiagnostic(ctx context.Context, e *diag.Entry) error {
	m, err := toDiagModel(e)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("lifecycle/bun: append diagnostic: %w", err)
	}
	return nil
}

// ListDiagnostics returns a job's entries matching opts in append
// order.
func (s *Store) ListDiagnostics(ctx context.Context, jobID id.JobID, opts diag.ListOpts) ([]*diag.Entry, error) {
	var models []diagModel
	q := s.db.NewSelect().Model(&models).
		Where("job_id = ?", jobID.String())

	if opts.Severity != "" {
		q = q.Where("severity = ?", string(opts.Severity))
	}
	if opts.Stage != "" {
		q = q.Where("stage = ?", opts.Stage)
	}
	if opts.Step != "" {
		q = q.Where("step = ?", opts.Step)
	}
	q = q.OrderExpr("created_at ASC, id ASC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("lifecycle/bun: list diagnostics: %w", err)
	}

	entries := make([]*diag.Entry, 0, len(models))
	for i := range models {
		e, convErr := fromDiagModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CountDiagnostics counts a job's entries of the given severity. An
// empty severity counts everything.
func (s *Store) CountDiagnostics(ctx context.Context, jobID id.JobID, severity diag.Severity) (int64, error) {
	q := s.db.NewSelect().Model((*diagModel)(nil)).
		Where("job_id = ?", jobID.String())
	if severity != "" {
		q = q.Where("severity = ?", string(severity))
	}
	n, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("lifecycle/bun: count diagnostics: %w", err)
	}
	return int64(n), nil
}
