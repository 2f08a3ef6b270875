package redis

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
)

// AppendDiagnostic pushes a msgpack-encoded entry onto the job's trail.
func (s *Store) AppendDiagnostic(ctx context.Context, e *diag.Entry) error {
	b, err := msgpack.Marshal(e)
	if err != nil {
		return fmt.Errorf("lifecycle/redis: encode diagnostic: %w", err)
	}
	if err := s.client.RPush(ctx, diagKey(e.JobID.String()), b).Err(); err != nil {
		return fmt.Errorf("lifecycle/redis: append diagnostic: %w", err)
	}
	return nil
}

// ListDiagnostics returns a job's entries in append order. Filters are
// applied after decoding since the trail is a flat list.
func (s *Store) ListDiagnostics(ctx context.Context, jobID id.JobID, opts diag.ListOpts) ([]*diag.Entry, error) {
	raw, err := s.client.LRange(ctx, diagKey(jobID.String()), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lifecycle/redis: list diagnostics: %w", err)
	}

	entries := make([]*diag.Entry, 0, len(raw))
	for _, item := range raw {
		var e diag.Entry
		if decErr := msgpack.Unmarshal([]byte(item), &e); decErr != nil {
			return nil, fmt.Errorf("lifecycle/redis: decode diagnostic: %w", decErr)
		}
		if opts.Severity != "" && e.Severity != opts.Severity {
			continue
		}
		if opts.Stage != "" && e.Stage != opts.Stage {
			continue
		}
		if opts.Step != "" && e.Step != opts.Step {
			continue
		}
		entries = append(entries, &e)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(entries) {
			return nil, nil
		}
		entries = entries[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

// CountDiagnostics returns the number of a job's entries with the given
// severity. The unfiltered count is a single LLen.
func (s *Store) CountDiagnostics(ctx context.Context, jobID id.JobID, severity diag.Severity) (int64, error) {
	if severity == "" {
		n, err := s.client.LLen(ctx, diagKey(jobID.String())).Result()
		if err != nil {
			return 0, fmt.Errorf("lifecycle/redis: count diagnostics: %w", err)
		}
		return n, nil
	}

	entries, err := s.ListDiagnostics(ctx, jobID, diag.ListOpts{Severity: severity})
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}
