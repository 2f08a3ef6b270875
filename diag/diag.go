// Package diag provides the append-only diagnostic trail attached to a
// job: severity-tagged entries scoped to the job, a stage, or a step.
// Diagnostics are an audit trail only — the run loop's terminal
// classification is decided by the state-error taxonomy, never by
// scanning recorded severities.
package diag

import (
	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/id"
)

// Severity tags how serious a diagnostic entry is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Entry is one record in a job's diagnostic trail. Entries are owned by
// exactly one job and are never mutated or deleted by the engine;
// eviction happens only when the reaper removes the whole job.
type Entry struct {
	lifecycle.Entity

	ID       id.DiagnosticID `json:"id"`
	JobID    id.JobID        `json:"job_id"`
	Severity Severity        `json:"severity"`
	Message  string          `json:"message"`
	Details  map[string]any  `json:"details,omitempty"`

	// Stage and Step scope the entry. Both empty means job-level;
	// stage set and step empty means stage-level.
	Stage string `json:"stage,omitempty"`
	Step  string `json:"step,omitempty"`
}
