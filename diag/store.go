package diag

import (
	"context"

	"github.com/xraph/lifecycle/id"
)

// ListOpts controls filtering and pagination for diagnostic queries.
type ListOpts struct {
	// Severity filters by severity. Empty means all severities.
	Severity Severity
	// Stage filters by stage name. Empty means all scopes.
	Stage string
	// Step filters by step name. Empty means all scopes.
	Step string
	// Limit is the maximum number of entries to return. Zero means no limit.
	Limit int
	// Offset is the number of entries to skip.
	Offset int
}

// Store defines the persistence contract for diagnostic entries.
// Append-only: there is no update or single-entry delete.
type Store interface {
	// AppendDiagnostic persists a new entry at the end of the job's trail.
	AppendDiagnostic(ctx context.Context, e *Entry) error

	// ListDiagnostics returns a job's entries in append order.
	ListDiagnostics(ctx context.Context, jobID id.JobID, opts ListOpts) ([]*Entry, error)

	// CountDiagnostics returns the number of a job's entries with the
	// given severity. Empty severity counts all entries.
	CountDiagnostics(ctx context.Context, jobID id.JobID, severity Severity) (int64, error)
}
