package notify

import (
	"context"

	"github.com/xraph/lifecycle/job"
)

// StoreNotifier persists the job through a job.Store on every
// mutation. Registering one keeps the stored record in sync with the
// in-memory job throughout a run.
type StoreNotifier struct {
	store job.Store
}

// NewStoreNotifier creates a notifier that writes through store.
func NewStoreNotifier(store job.Store) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (s *StoreNotifier) Name() string { return "store" }

func (s *StoreNotifier) Notify(ctx context.Context, j *job.Job) error {
	return s.store.UpdateJob(ctx, j)
}

var _ Notifier = (*StoreNotifier)(nil)
