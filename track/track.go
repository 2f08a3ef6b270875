// Package track maintains the stage/step position of a running job.
//
// Stages and steps are guarded scopes entered through Tracker.Stage and
// Tracker.Step. Each scope pushes a frame onto an explicit stack, so
// nested scopes restore the parent position when they exit instead of
// clearing it. Entering and leaving a scope records diagnostics, fires
// the optional hook interfaces, and dispatches a notification.
package track

import (
	"context"
	"time"
)

// Kind discriminates stage frames from step frames.
type Kind string

const (
	KindStage Kind = "stage"
	KindStep  Kind = "step"
)

// Frame is one entry on the tracker's scope stack.
type Frame struct {
	Kind      Kind
	Name      string
	Data      map[string]any
	StartedAt time.Time
}

// StageHooks is implemented by actors that want callbacks at stage
// boundaries. Hooks that are not implemented default to no-ops. Hook
// errors are logged and never fail the scope.
type StageHooks interface {
	OnStageStart(ctx context.Context, name string, data map[string]any) error
	OnStageSuccess(ctx context.Context, name string, data map[string]any) error
	OnStageFail(ctx context.Context, name string, data map[string]any, err error) error
	OnStageEnd(ctx context.Context, name string, data map[string]any) error
}

// StepHooks is the step-level counterpart of StageHooks.
type StepHooks interface {
	OnStepStart(ctx context.Context, name string, data map[string]any) error
	OnStepSuccess(ctx context.Context, name string, data map[string]any) error
	OnStepFail(ctx context.Context, name string, data map[string]any, err error) error
	OnStepEnd(ctx context.Context, name string, data map[string]any) error
}
