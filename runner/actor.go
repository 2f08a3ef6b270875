package runner

import (
	"context"
)

// Actor is the behavior of a concrete job type. Act performs the work,
// structuring it through the execution's tracker.
type Actor interface {
	Act(ctx context.Context, exec *Execution) error
}

// ActorFunc adapts a plain function into an Actor.
type ActorFunc func(ctx context.Context, exec *Execution) error

func (f ActorFunc) Act(ctx context.Context, exec *Execution) error { return f(ctx, exec) }

// Resumer is implemented by actors that can pick a paused job back up.
// Actors without it make Runner.Resume return ErrResumeUnsupported.
type Resumer interface {
	ActResume(ctx context.Context, exec *Execution) error
}

// SuccessHook runs after a run ends in a good status. An error or panic
// from the hook demotes the job to success_with_warning; it never flips
// the run to a failure.
type SuccessHook interface {
	OnSuccess(ctx context.Context, exec *Execution) error
}

// FailureHook runs after a run ends in a bad status. Errors are logged
// and swallowed.
type FailureHook interface {
	OnFailure(ctx context.Context, exec *Execution) error
}

// Finalizer runs exactly once at the very end of every run, after the
// post hooks, regardless of outcome. Errors are logged and swallowed.
type Finalizer interface {
	Finalize(ctx context.Context, exec *Execution) error
}
