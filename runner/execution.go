package runner

import (
	"context"

	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/job"
	"github.com/xraph/lifecycle/notify"
	"github.com/xraph/lifecycle/track"
)

// Execution is what an actor acts through: the job record plus the
// run-scoped collaborators. One Execution is built per run and is not
// reused.
type Execution struct {
	Job        *job.Job
	Tracker    *track.Tracker
	Recorder   *diag.Recorder
	Dispatcher *notify.Dispatcher
	Store      job.Store
}

// Stage enters a named stage scope. See track.Tracker.Stage.
func (e *Execution) Stage(ctx context.Context, name string, data map[string]any, fn func(ctx context.Context) error) error {
	return e.Tracker.Stage(ctx, name, data, fn)
}

// Step enters a named step scope. See track.Tracker.Step.
func (e *Execution) Step(ctx context.Context, name string, data map[string]any, fn func(ctx context.Context) error) error {
	return e.Tracker.Step(ctx, name, data, fn)
}

// AddTotalUnits grows the expected work count and notifies observers.
func (e *Execution) AddTotalUnits(ctx context.Context, n int) {
	e.Job.AddTotalUnits(n)
	e.Dispatcher.Dispatch(ctx, e.Job)
}

// AddDoneUnits records completed work and notifies observers. Steps do
// this automatically on success; use it directly for work done outside
// a step scope.
func (e *Execution) AddDoneUnits(ctx context.Context, n int) {
	e.Job.AddDoneUnits(n)
	e.Dispatcher.Dispatch(ctx, e.Job)
}

// SetPercentOverride pins the displayed percentage and notifies
// observers.
func (e *Execution) SetPercentOverride(ctx context.Context, percent int) error {
	if err := e.Job.Progress.SetPercentOverride(percent); err != nil {
		return err
	}
	e.Job.Touch()
	e.Dispatcher.Dispatch(ctx, e.Job)
	return nil
}
