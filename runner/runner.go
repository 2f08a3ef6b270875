// Package runner drives a job through its lifecycle: acknowledgment,
// the cancel re-check, the act phase, outcome classification, and the
// post-run hooks. It owns the single place where errors coming out of
// an act are turned into a final status.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/job"
	mw "github.com/xraph/lifecycle/middleware"
	"github.com/xraph/lifecycle/notify"
	"github.com/xraph/lifecycle/track"
)

// Runner executes jobs. It is safe for concurrent use; each Run builds
// its own Execution and Tracker.
type Runner struct {
	store      job.Store
	recorder   *diag.Recorder
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	mws        []mw.Middleware
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMiddleware appends middleware to the act chain. The chain always
// starts with panic recovery; user middleware runs inside it.
func WithMiddleware(m mw.Middleware) Option {
	return func(r *Runner) { r.mws = append(r.mws, m) }
}

// WithClock overrides the runner's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner backed by the given store, recorder, and
// dispatcher.
func New(store job.Store, recorder *diag.Recorder, dispatcher *notify.Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		store:      store,
		recorder:   recorder,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives one full execution of j through actor.
//
// Sequence: the job is acknowledged and observers notified; the record
// is refreshed from the store and a pending cancellation honored before
// any work starts; otherwise the job enters running and the actor acts
// through the middleware chain. The act error decides the final status:
// failure-taxonomy errors end the job in failed, a cancellation error
// in canceled, any other error in errored, and a nil error in success.
// Post hooks then run, with a hook error or panic demoting a good
// outcome to success_with_warning, and Finalize runs exactly once.
//
// Run returns nil when the outcome was classified into a final status
// (including failures and cancellations; the status is the source of
// truth). Only unclassified errors, which end the job in errored, are
// returned to the caller.
func (r *Runner) Run(ctx context.Context, j *job.Job, actor Actor) error {
	return r.run(ctx, j, actor, actor.Act)
}

// Resume drives a paused job through the actor's resume path. Actors
// that do not implement Resumer get ErrResumeUnsupported.
func (r *Runner) Resume(ctx context.Context, j *job.Job, actor Actor) error {
	res, ok := actor.(Resumer)
	if !ok {
		return lifecycle.ErrResumeUnsupported
	}
	return r.run(ctx, j, actor, res.ActResume)
}

// RequestCancel flags the job for cooperative cancellation and notifies
// observers. Terminal jobs are refused with ErrInvalidStatus. The run
// loop honors the flag at its single re-check point, after
// acknowledgment and before running.
func (r *Runner) RequestCancel(ctx context.Context, j *job.Job) error {
	return r.dispatcher.Apply(ctx, j, func(j *job.Job) error {
		return j.RequestCancel()
	})
}

func (r *Runner) run(ctx context.Context, j *job.Job, actor Actor, act func(ctx context.Context, exec *Execution) error) error {
	exec := &Execution{
		Job:        j,
		Recorder:   r.recorder,
		Dispatcher: r.dispatcher,
		Store:      r.store,
	}
	exec.Tracker = track.NewTracker(j, r.recorder, r.dispatcher, actor,
		track.WithLogger(r.logger), track.WithClock(r.now))

	// A cancellation requested before acknowledgment is visible on the
	// record itself. Capture it now: acknowledging overwrites the
	// status, in memory and through any persisting notifier.
	cancelRequested := j.IsCancelRequested()

	r.transition(ctx, j, job.StatusRequestAck)

	// Single cancellation re-check against the freshest record. After
	// this point the run is not preempted.
	if err := r.store.RefreshJob(ctx, j); err != nil {
		r.logger.Warn("job refresh failed, continuing with in-memory record",
			slog.String("job_id", j.ID.String()),
			slog.String("error", err.Error()),
		)
	}
	if cancelRequested || j.IsCancelRequested() {
		r.recorder.Info(ctx, j.ID, "", "", "cancellation honored before start", nil)
		r.transition(ctx, j, job.StatusCanceled)
		r.postRun(ctx, j, actor, exec)
		return nil
	}

	r.transition(ctx, j, job.StatusRunning)

	chain := mw.Chain(append([]mw.Middleware{mw.Recover(r.logger)}, r.mws...)...)
	actErr := chain(ctx, j, func(ctx context.Context) error {
		return act(ctx, exec)
	})

	retErr := r.classify(ctx, j, actErr)
	r.postRun(ctx, j, actor, exec)
	return retErr
}

// classify turns the act error into the final status. It returns the
// error the caller should see: nil for classified outcomes, the error
// itself when the job ended in errored.
func (r *Runner) classify(ctx context.Context, j *job.Job, actErr error) error {
	switch {
	case actErr == nil:
		if !j.Status.IsTerminal() {
			r.transition(ctx, j, job.StatusSuccess)
		}
		return nil

	case errors.Is(actErr, lifecycle.ErrJobCanceled):
		r.persistReason(j, "cancel_reason", actErr)
		r.recorder.Info(ctx, j.ID, j.CurrentStage, j.CurrentStep, "job canceled", map[string]any{"reason": actErr.Error()})
		if j.Status != job.StatusCanceled {
			r.transition(ctx, j, job.StatusCanceled)
		}
		return nil

	case errors.Is(actErr, lifecycle.ErrJobFailed),
		errors.Is(actErr, lifecycle.ErrStageFailed),
		errors.Is(actErr, lifecycle.ErrStepFailed):
		r.persistReason(j, "failure_reason", actErr)
		r.recorder.Critical(ctx, j.ID, j.CurrentStage, j.CurrentStep, "job failed", map[string]any{"error": actErr.Error()})
		if j.Status != job.StatusFailed {
			r.transition(ctx, j, job.StatusFailed)
		}
		return nil

	case errors.Is(actErr, lifecycle.ErrJobState):
		// A bare state error with no classified subtype is assumed to
		// describe an already-classified condition. Log only.
		r.logger.Warn("unclassified job state error",
			slog.String("job_id", j.ID.String()),
			slog.String("error", actErr.Error()),
		)
		return nil

	default:
		r.persistReason(j, "failure_reason", actErr)
		r.recorder.Critical(ctx, j.ID, j.CurrentStage, j.CurrentStep, "job errored", map[string]any{"error": actErr.Error()})
		r.transition(ctx, j, job.StatusErrored)
		return actErr
	}
}

// postRun dispatches the success or failure hook for the final status
// and then finalizes. An error or panic out of a hook or Finalize
// demotes a good outcome to success_with_warning; a bad outcome is
// never upgraded.
func (r *Runner) postRun(ctx context.Context, j *job.Job, actor Actor, exec *Execution) {
	defer func() {
		f, ok := actor.(Finalizer)
		if !ok {
			return
		}
		if err := r.guardHook(ctx, j, "Finalize", exec, f.Finalize); err != nil {
			r.logger.Warn("finalize failed",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)
			if j.Status.IsGood() {
				r.recorder.Warning(ctx, j.ID, "", "", "finalize failed", map[string]any{"error": err.Error()})
				r.transition(ctx, j, job.StatusSuccessWithWarning)
			}
		}
	}()

	switch {
	case j.Status.IsGood():
		h, ok := actor.(SuccessHook)
		if !ok {
			return
		}
		if err := r.guardHook(ctx, j, "OnSuccess", exec, h.OnSuccess); err != nil {
			r.logger.Warn("success hook failed, demoting outcome",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)
			r.recorder.Warning(ctx, j.ID, "", "", "success hook failed", map[string]any{"error": err.Error()})
			r.transition(ctx, j, job.StatusSuccessWithWarning)
		}

	case j.Status.IsBad():
		h, ok := actor.(FailureHook)
		if !ok {
			return
		}
		if err := r.guardHook(ctx, j, "OnFailure", exec, h.OnFailure); err != nil {
			r.logger.Warn("failure hook failed",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// guardHook runs a post hook with panic containment.
func (r *Runner) guardHook(ctx context.Context, j *job.Job, name string, exec *Execution, hook func(ctx context.Context, exec *Execution) error) (retErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("post hook panicked",
				slog.String("job_id", j.ID.String()),
				slog.String("hook", name),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			retErr = errors.New("panic in post hook")
		}
	}()
	return hook(ctx, exec)
}

func (r *Runner) transition(ctx context.Context, j *job.Job, s job.Status) {
	j.UpdateStatus(s)
	r.dispatcher.Dispatch(ctx, j)
}

func (r *Runner) persistReason(j *job.Job, key string, cause error) {
	if err := j.MergeDataField(key, cause.Error()); err != nil {
		r.logger.Warn("could not persist outcome reason into job data",
			slog.String("job_id", j.ID.String()),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
