package track

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/job"
	"github.com/xraph/lifecycle/notify"
)

// Tracker drives the stage/step scopes of a single job run. It is not
// safe for concurrent use; a run owns exactly one tracker.
type Tracker struct {
	job        *job.Job
	recorder   *diag.Recorder
	dispatcher *notify.Dispatcher
	logger     *slog.Logger

	// Hook caches, type-asserted once at construction.
	stageHooks StageHooks
	stepHooks  StepHooks

	frames []*Frame
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for hook errors.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock overrides the frame timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker for j. The target is type-asserted for
// the optional StageHooks and StepHooks interfaces; hooks it does not
// implement default to no-ops.
func NewTracker(j *job.Job, recorder *diag.Recorder, dispatcher *notify.Dispatcher, target any, opts ...Option) *Tracker {
	t := &Tracker{
		job:        j,
		recorder:   recorder,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		now:        time.Now,
	}
	if h, ok := target.(StageHooks); ok {
		t.stageHooks = h
	}
	if h, ok := target.(StepHooks); ok {
		t.stepHooks = h
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Depth reports the current scope nesting depth.
func (t *Tracker) Depth() int { return len(t.frames) }

// Current returns the innermost frame, or nil outside any scope.
func (t *Tracker) Current() *Frame {
	if len(t.frames) == 0 {
		return nil
	}
	return t.frames[len(t.frames)-1]
}

// Stage runs fn inside a named stage scope. A non-nil fn error is
// recorded as a CRITICAL diagnostic and propagated wrapped in
// lifecycle.ErrStageFailed unless it is already a job state error.
func (t *Tracker) Stage(ctx context.Context, name string, data map[string]any, fn func(ctx context.Context) error) error {
	return t.scope(ctx, KindStage, name, data, fn)
}

// Step runs fn inside a named step scope. On success the job's done
// unit count advances by one. A non-nil fn error propagates wrapped in
// lifecycle.ErrStepFailed unless it is already a job state error.
func (t *Tracker) Step(ctx context.Context, name string, data map[string]any, fn func(ctx context.Context) error) error {
	return t.scope(ctx, KindStep, name, data, fn)
}

func (t *Tracker) scope(ctx context.Context, kind Kind, name string, data map[string]any, fn func(ctx context.Context) error) (err error) {
	if data == nil {
		data = map[string]any{}
	}
	frame := &Frame{Kind: kind, Name: name, Data: data, StartedAt: t.now()}
	t.frames = append(t.frames, frame)
	t.syncPointers()

	defer func() {
		t.runHook(ctx, kind, "end", name, data, nil)
		t.record(ctx, diag.SeverityInfo, fmt.Sprintf("%s %q completed", kind, name), data)
		t.frames = t.frames[:len(t.frames)-1]
		t.syncPointers()
		t.dispatcher.Dispatch(ctx, t.job)
	}()

	t.record(ctx, diag.SeverityInfo, fmt.Sprintf("%s %q started", kind, name), data)
	t.runHook(ctx, kind, "start", name, data, nil)
	t.dispatcher.Dispatch(ctx, t.job)

	if err = fn(ctx); err != nil {
		data["error"] = err.Error()
		t.record(ctx, diag.SeverityCritical, fmt.Sprintf("%s %q failed", kind, name), data)
		t.runHook(ctx, kind, "fail", name, data, err)
		return t.wrapFailure(kind, name, err)
	}

	t.runHook(ctx, kind, "success", name, data, nil)
	t.record(ctx, diag.SeverityInfo, fmt.Sprintf("%s %q succeeded", kind, name), data)
	if kind == KindStep {
		t.job.AddDoneUnits(1)
	}
	return nil
}

// syncPointers mirrors the innermost stage and step frames onto the
// job's transient position fields.
func (t *Tracker) syncPointers() {
	t.job.CurrentStage = ""
	t.job.CurrentStep = ""
	for i := len(t.frames) - 1; i >= 0; i-- {
		f := t.frames[i]
		if f.Kind == KindStage && t.job.CurrentStage == "" {
			t.job.CurrentStage = f.Name
		}
		if f.Kind == KindStep && t.job.CurrentStep == "" {
			t.job.CurrentStep = f.Name
		}
	}
}

func (t *Tracker) wrapFailure(kind Kind, name string, err error) error {
	if job.IsStateError(err) {
		return err
	}
	sentinel := lifecycle.ErrStageFailed
	if kind == KindStep {
		sentinel = lifecycle.ErrStepFailed
	}
	return fmt.Errorf("%w: %s %q: %w", sentinel, kind, name, err)
}

func (t *Tracker) record(ctx context.Context, severity diag.Severity, message string, data map[string]any) {
	if t.recorder == nil {
		return
	}
	details := make(map[string]any, len(data))
	for k, v := range data {
		details[k] = v
	}
	switch severity {
	case diag.SeverityCritical:
		t.recorder.Critical(ctx, t.job.ID, t.job.CurrentStage, t.job.CurrentStep, message, details)
	case diag.SeverityWarning:
		t.recorder.Warning(ctx, t.job.ID, t.job.CurrentStage, t.job.CurrentStep, message, details)
	default:
		t.recorder.Info(ctx, t.job.ID, t.job.CurrentStage, t.job.CurrentStep, message, details)
	}
}

func (t *Tracker) runHook(ctx context.Context, kind Kind, phase, name string, data map[string]any, cause error) {
	var err error
	switch {
	case kind == KindStage && t.stageHooks != nil:
		switch phase {
		case "start":
			err = t.stageHooks.OnStageStart(ctx, name, data)
		case "success":
			err = t.stageHooks.OnStageSuccess(ctx, name, data)
		case "fail":
			err = t.stageHooks.OnStageFail(ctx, name, data, cause)
		case "end":
			err = t.stageHooks.OnStageEnd(ctx, name, data)
		}
	case kind == KindStep && t.stepHooks != nil:
		switch phase {
		case "start":
			err = t.stepHooks.OnStepStart(ctx, name, data)
		case "success":
			err = t.stepHooks.OnStepSuccess(ctx, name, data)
		case "fail":
			err = t.stepHooks.OnStepFail(ctx, name, data, cause)
		case "end":
			err = t.stepHooks.OnStepEnd(ctx, name, data)
		}
	}
	if err != nil {
		t.logger.Warn("scope hook error",
			slog.String("job_id", t.job.ID.String()),
			slog.String("kind", string(kind)),
			slog.String("phase", phase),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}
