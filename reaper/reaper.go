// Package reaper evicts expired job records. The engine itself never
// deletes jobs; eviction is an external decision based on each job's
// staleness, and only terminal jobs are ever removed.
package reaper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/lifecycle/job"
)

// DefaultSchedule sweeps every ten minutes.
const DefaultSchedule = "@every 10m"

// defaultConcurrency bounds parallel deletions per sweep.
const defaultConcurrency = 4

// cronParser supports standard 5-field cron and descriptors like "@every 10m".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression and returns the schedule.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// Option configures a Reaper.
type Option func(*Reaper)

// WithLogger sets the reaper's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reaper) { r.logger = logger }
}

// WithConcurrency bounds how many deletions run in parallel per sweep.
func WithConcurrency(n int) Option {
	return func(r *Reaper) { r.concurrency = n }
}

// WithClock overrides the reaper's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reaper) { r.now = now }
}

// Reaper periodically sweeps the store and deletes terminal jobs whose
// TTL has passed.
type Reaper struct {
	store       job.Store
	logger      *slog.Logger
	schedule    cronlib.Schedule
	concurrency int
	now         func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Reaper sweeping on the given cron expression.
func New(store job.Store, schedule string, opts ...Option) (*Reaper, error) {
	sched, err := ParseSchedule(schedule)
	if err != nil {
		return nil, err
	}
	r := &Reaper{
		store:       store,
		logger:      slog.Default(),
		schedule:    sched,
		concurrency: defaultConcurrency,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start launches the sweep goroutine.
func (r *Reaper) Start(_ context.Context) error {
	r.wg.Add(1)
	go r.sweepLoop()
	r.logger.Info("reaper started")
	return nil
}

// Stop signals the reaper to stop and waits for the sweep goroutine to
// finish.
func (r *Reaper) Stop(_ context.Context) error {
	close(r.stopCh)
	r.wg.Wait()
	r.logger.Info("reaper stopped")
	return nil
}

func (r *Reaper) sweepLoop() {
	defer r.wg.Done()

	for {
		next := r.schedule.Next(r.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-r.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			if n, err := r.Sweep(context.Background()); err != nil {
				r.logger.Warn("sweep error", slog.String("error", err.Error()))
			} else if n > 0 {
				r.logger.Info("sweep evicted jobs", slog.Int("count", n))
			}
		}
	}
}

// Sweep deletes every expired terminal job once and reports how many
// were evicted. Exposed so operators can trigger an eviction pass
// directly.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	jobs, err := r.store.ListJobs(ctx, job.ListOpts{})
	if err != nil {
		return 0, err
	}

	now := r.now()
	expired := make([]*job.Job, 0, len(jobs))
	for _, j := range jobs {
		// Non-terminal jobs are never evicted, stale or not.
		if !j.Status.IsTerminal() {
			continue
		}
		if j.IsStale(now) {
			expired = append(expired, j)
		}
	}

	var (
		mu      sync.Mutex
		evicted int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, j := range expired {
		g.Go(func() error {
			if err := r.store.DeleteJob(gctx, j.ID); err != nil {
				r.logger.Warn("evict failed",
					slog.String("job_id", j.ID.String()),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			evicted++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return evicted, nil
}
