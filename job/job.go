package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/id"
)

// DefaultTTL is the age after which a job record is considered stale.
const DefaultTTL = 3 * 24 * time.Hour

// Job represents a unit of work tracked through the status lifecycle.
// It is mutated only by the run loop, the status operations below, and
// the stage/step tracker; observers see every mutation through the
// notify dispatcher.
type Job struct {
	lifecycle.Entity

	ID          id.JobID        `json:"id"`
	Type        string          `json:"type"`
	Status      Status          `json:"status"`
	UIStatus    string          `json:"ui_status"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedBy   string          `json:"created_by"`
	Description string          `json:"description,omitempty"`
	TTL         time.Duration   `json:"ttl"`
	Progress    Progress        `json:"progress"`

	// CurrentStage and CurrentStep mirror the innermost active
	// stage/step during a run. They are transient bookkeeping
	// maintained by track.Tracker and carry no meaning outside an
	// active run.
	CurrentStage string `json:"current_stage,omitempty"`
	CurrentStep  string `json:"current_step,omitempty"`
}

// Option configures a Job at creation time.
type Option func(*Job)

// WithDescription sets the human-readable job description.
func WithDescription(desc string) Option {
	return func(j *Job) { j.Description = desc }
}

// WithData attaches the opaque payload the concrete job acts on.
func WithData(data json.RawMessage) Option {
	return func(j *Job) { j.Data = data }
}

// WithTTL overrides the staleness threshold.
func WithTTL(ttl time.Duration) Option {
	return func(j *Job) { j.TTL = ttl }
}

// New creates a pending job of the given type.
func New(jobType, createdBy string, opts ...Option) *Job {
	j := &Job{
		Entity:    lifecycle.NewEntity(),
		ID:        id.NewJobID(),
		Type:      jobType,
		CreatedBy: createdBy,
		TTL:       DefaultTTL,
	}
	j.Status = StatusPending
	j.UIStatus, _ = UIStatusFor(StatusPending)
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// UpdateStatus sets the status and derives the UI status from the fixed
// mapping. Statuses without a mapping leave the UI status untouched.
// The updated timestamp is always refreshed. Notification is the
// caller's responsibility.
func (j *Job) UpdateStatus(s Status) {
	j.Status = s
	if ui, ok := UIStatusFor(s); ok {
		j.UIStatus = ui
	}
	j.Touch()
}

// UpdateStatusUI sets the status together with an explicit UI status,
// bypassing the fixed mapping.
func (j *Job) UpdateStatusUI(s Status, ui string) {
	j.Status = s
	j.UIStatus = ui
	j.Touch()
}

// UpdateUIStatus overrides the display text without changing the status.
func (j *Job) UpdateUIStatus(ui string) {
	j.UIStatus = ui
	j.Touch()
}

// Touch refreshes the updated timestamp.
func (j *Job) Touch() {
	j.UpdatedAt = time.Now().UTC()
}

// RequestCancel moves the job to cancel_requested. Cancellation is
// cooperative: the run loop observes it once, after acknowledgment and
// before entering running. Terminal jobs cannot be canceled.
func (j *Job) RequestCancel() error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel job in status %q", lifecycle.ErrInvalidStatus, j.Status)
	}
	j.UpdateStatus(StatusCancelRequested)
	return nil
}

// HasExpired reports whether the job's age has passed its TTL at the
// given instant.
func (j *Job) HasExpired(now time.Time) bool {
	return !now.Before(j.CreatedAt.Add(j.TTL))
}

// IsStale is the eviction-facing alias for HasExpired. The engine never
// deletes jobs itself; an external reaper decides based on this.
func (j *Job) IsStale(now time.Time) bool {
	return j.HasExpired(now)
}

// IsRunning reports whether the job is currently running.
func (j *Job) IsRunning() bool { return j.Status == StatusRunning }

// IsFailed reports whether the job failed.
func (j *Job) IsFailed() bool { return j.Status == StatusFailed }

// IsCanceled reports whether the job was canceled.
func (j *Job) IsCanceled() bool { return j.Status == StatusCanceled }

// IsCancelRequested reports whether cancellation has been requested.
// Callers deciding whether to honor it should refresh the record from
// the store first; the run loop does.
func (j *Job) IsCancelRequested() bool { return j.Status == StatusCancelRequested }

// AddTotalUnits increases the expected amount of work and refreshes the
// updated timestamp.
func (j *Job) AddTotalUnits(n int) {
	j.Progress.AddTotalUnits(n)
	j.Touch()
}

// AddDoneUnits records completed work and refreshes the updated
// timestamp. The progress notification, like all notifications, is the
// caller's responsibility.
func (j *Job) AddDoneUnits(n int) {
	j.Progress.AddDoneUnits(n)
	j.Touch()
}

// MergeDataField merges a key into the job's data payload. The payload
// must be empty or a JSON object; anything else is left untouched and
// reported as an error. The run loop uses this to persist failure
// reasons without clobbering the payload.
func (j *Job) MergeDataField(key string, value any) error {
	fields := map[string]any{}
	if len(j.Data) > 0 {
		if err := json.Unmarshal(j.Data, &fields); err != nil {
			return fmt.Errorf("job data is not a JSON object: %w", err)
		}
	}
	fields[key] = value
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	j.Data = raw
	j.Touch()
	return nil
}

// RemainingUnits returns the outstanding work unit count.
func (j *Job) RemainingUnits() int { return j.Progress.RemainingUnits() }

// PercentProgress returns the job's progress percentage, honoring any
// pinned override.
func (j *Job) PercentProgress() int { return j.Progress.Percent() }
