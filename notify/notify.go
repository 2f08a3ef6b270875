// Package notify fans job mutations out to registered observers.
//
// A Notifier receives the job after any visible mutation: status
// transitions, progress updates, and stage or step boundaries. Notifier
// errors are logged and swallowed so a misbehaving observer can never
// stall the run loop.
package notify

import (
	"context"

	"github.com/xraph/lifecycle/job"
)

// Notifier observes job mutations. Implementations must tolerate being
// called concurrently for different jobs.
type Notifier interface {
	// Name identifies the notifier in logs.
	Name() string

	// Notify is called after the job has been mutated. The job pointer
	// is shared with the run loop; implementations must not mutate it.
	Notify(ctx context.Context, j *job.Job) error
}

// NotifierFunc adapts a plain function into a Notifier.
type NotifierFunc struct {
	NotifierName string
	Fn           func(ctx context.Context, j *job.Job) error
}

func (f NotifierFunc) Name() string { return f.NotifierName }

func (f NotifierFunc) Notify(ctx context.Context, j *job.Job) error {
	return f.Fn(ctx, j)
}
