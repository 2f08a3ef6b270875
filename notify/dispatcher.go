package notify

import (
	"context"
	"log/slog"

	"github.com/xraph/lifecycle/job"
)

// Dispatcher holds registered notifiers and fans mutations out to them
// in registration order.
type Dispatcher struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher with the given logger. A nil
// logger falls back to slog.Default.
func NewDispatcher(logger *slog.Logger, notifiers ...Notifier) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{notifiers: notifiers, logger: logger}
}

// Register adds a notifier. Notifiers run in registration order.
func (d *Dispatcher) Register(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Notifiers returns all registered notifiers.
func (d *Dispatcher) Notifiers() []Notifier { return d.notifiers }

// Dispatch delivers the job to every registered notifier. Notifier
// errors are logged and never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, j *job.Job) {
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, j); err != nil {
			d.logger.Warn("notifier error",
				slog.String("notifier", n.Name()),
				slog.String("job_id", j.ID.String()),
				slog.String("status", string(j.Status)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Apply runs mutate against the job and dispatches afterwards, even
// when mutate returns an error. The mutation error is returned as-is.
func (d *Dispatcher) Apply(ctx context.Context, j *job.Job, mutate func(*job.Job) error) error {
	defer d.Dispatch(ctx, j)
	return mutate(j)
}
