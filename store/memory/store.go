// Package memory provides a fully in-memory store. Safe for concurrent
// access. Intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
)

// Compile-time interface checks.
var (
	_ job.Store  = (*Store)(nil)
	_ diag.Store = (*Store)(nil)
)

// Store is an in-memory implementation of the job and diagnostic
// stores. All reads and writes copy records, so callers can mutate
// what they hold without racing against the store.
type Store struct {
	mu sync.RWMutex

	jobs        map[string]*job.Job
	diagnostics map[string][]*diag.Entry // key: job ID
	closed      bool
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		jobs:        make(map[string]*job.Job),
		diagnostics: make(map[string][]*diag.Entry),
	}
}

// Ping always succeeds for an open memory store.
func (m *Store) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return lifecycle.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Subsequent operations fail with
// ErrStoreClosed.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CreateJob persists a new job.
func (m *Store) CreateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return lifecycle.ErrStoreClosed
	}

	key := j.ID.String()
	if _, exists := m.jobs[key]; exists {
		return lifecycle.ErrJobAlreadyExists
	}
	cp := *j
	m.jobs[key] = &cp
	return nil
}

// GetJob retrieves a job by ID.
func (m *Store) GetJob(_ context.Context, jobID id.JobID) (*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, lifecycle.ErrStoreClosed
	}

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, lifecycle.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

// UpdateJob replaces the stored record for an existing job.
func (m *Store) UpdateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return lifecycle.ErrStoreClosed
	}

	key := j.ID.String()
	if _, ok := m.jobs[key]; !ok {
		return lifecycle.ErrJobNotFound
	}
	cp := *j
	m.jobs[key] = &cp
	return nil
}

// RefreshJob reloads the stored record into j in place.
func (m *Store) RefreshJob(_ context.Context, j *job.Job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return lifecycle.ErrStoreClosed
	}

	stored, ok := m.jobs[j.ID.String()]
	if !ok {
		return lifecycle.ErrJobNotFound
	}
	*j = *stored
	return nil
}

// ListJobs returns jobs matching opts, newest first.
func (m *Store) ListJobs(_ context.Context, opts job.ListOpts) ([]*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, lifecycle.ErrStoreClosed
	}

	matches := make([]*job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		if opts.Type != "" && j.Type != opts.Type {
			continue
		}
		cp := *j
		matches = append(matches, &cp)
	}

	sort.Slice(matches, func(i, k int) bool {
		if !matches[i].CreatedAt.Equal(matches[k].CreatedAt) {
			return matches[i].CreatedAt.After(matches[k].CreatedAt)
		}
		return matches[i].ID.String() < matches[k].ID.String()
	})

	return paginate(matches, opts.Offset, opts.Limit), nil
}

// DeleteJob removes a job and its diagnostics. Intended for the reaper;
// the engine never deletes jobs itself.
func (m *Store) DeleteJob(_ context.Context, jobID id.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return lifecycle.ErrStoreClosed
	}

	key := jobID.String()
	if _, ok := m.jobs[key]; !ok {
		return lifecycle.ErrJobNotFound
	}
	delete(m.jobs, key)
	delete(m.diagnostics, key)
	return nil
}

// AppendDiagnostic adds an entry to a job's audit trail. Diagnostics
// are append-only.
func (m *Store) AppendDiagnostic(_ context.Context, e *diag.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return lifecycle.ErrStoreClosed
	}

	cp := *e
	key := e.JobID.String()
	m.diagnostics[key] = append(m.diagnostics[key], &cp)
	return nil
}

// ListDiagnostics returns a job's entries matching opts in append
// order.
func (m *Store) ListDiagnostics(_ context.Context, jobID id.JobID, opts diag.ListOpts) ([]*diag.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, lifecycle.ErrStoreClosed
	}

	entries := m.diagnostics[jobID.String()]
	matches := make([]*diag.Entry, 0, len(entries))
	for _, e := range entries {
		if opts.Severity != "" && e.Severity != opts.Severity {
			continue
		}
		if opts.Stage != "" && e.Stage != opts.Stage {
			continue
		}
		if opts.Step != "" && e.Step != opts.Step {
			continue
		}
		cp := *e
		matches = append(matches, &cp)
	}

	return paginate(matches, opts.Offset, opts.Limit), nil
}

// CountDiagnostics counts a job's entries of the given severity. An
// empty severity counts everything.
func (m *Store) CountDiagnostics(_ context.Context, jobID id.JobID, severity diag.Severity) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, lifecycle.ErrStoreClosed
	}

	var n int64
	for _, e := range m.diagnostics[jobID.String()] {
		if severity == "" || e.Severity == severity {
			n++
		}
	}
	return n, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
