package diag

import (
	"context"
	"log/slog"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/id"
)

// Recorder appends severity-tagged entries to a job's diagnostic trail.
// Append failures are logged and swallowed: the trail must never fail
// the job it describes.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Info records an info-level entry.
func (r *Recorder) Info(ctx context.Context, jobID id.JobID, stage, step, message string, details map[string]any) {
	r.record(ctx, jobID, SeverityInfo, stage, step, message, details)
}

// Warning records a warning-level entry.
func (r *Recorder) Warning(ctx context.Context, jobID id.JobID, stage, step, message string, details map[string]any) {
	r.record(ctx, jobID, SeverityWarning, stage, step, message, details)
}

// Critical records a critical-level entry.
func (r *Recorder) Critical(ctx context.Context, jobID id.JobID, stage, step, message string, details map[string]any) {
	r.record(ctx, jobID, SeverityCritical, stage, step, message, details)
}

func (r *Recorder) record(ctx context.Context, jobID id.JobID, severity Severity, stage, step, message string, details map[string]any) {
	e := &Entry{
		Entity:   lifecycle.NewEntity(),
		ID:       id.NewDiagnosticID(),
		JobID:    jobID,
		Severity: severity,
		Message:  message,
		Details:  details,
		Stage:    stage,
		Step:     step,
	}

	if err := r.store.AppendDiagnostic(ctx, e); err != nil {
		r.logger.Warn("failed to append diagnostic entry",
			slog.String("job_id", jobID.String()),
			slog.String("severity", string(severity)),
			slog.String("message", message),
			slog.String("error", err.Error()),
		)
	}
}
