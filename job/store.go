package job

import (
	"context"

	"github.com/xraph/lifecycle/id"
)

// ListOpts controls filtering and pagination for job list queries.
type ListOpts struct {
	// Status filters by job status. Empty means all statuses.
	Status Status
	// Type filters by job type. Empty means all types.
	Type string
	// Limit is the maximum number of jobs to return. Zero means no limit.
	Limit int
	// Offset is the number of jobs to skip.
	Offset int
}

// Store defines the persistence contract for jobs. The engine itself
// only creates, updates, and refreshes records; listing and deletion
// exist for operators and the reaper.
type Store interface {
	// CreateJob persists a new job record.
	CreateJob(ctx context.Context, j *Job) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID id.JobID) (*Job, error)

	// UpdateJob persists changes to an existing job in place.
	UpdateJob(ctx context.Context, j *Job) error

	// RefreshJob reloads j's fields from the authoritative stored
	// record. The run loop uses it to observe an externally requested
	// cancellation rather than trusting its cached copy.
	RefreshJob(ctx context.Context, j *Job) error

	// ListJobs returns jobs matching the given options, ordered by
	// creation time.
	ListJobs(ctx context.Context, opts ListOpts) ([]*Job, error)

	// DeleteJob removes a job and its diagnostics. The run loop never
	// calls this; eviction policy belongs to the reaper.
	DeleteJob(ctx context.Context, jobID id.JobID) error
}
