// Package lifecycle provides a job lifecycle and staged-execution engine
// for Go. Jobs are records that move through a finite status lifecycle,
// track progress in measurable units, emit an append-only diagnostic
// trail, and notify observers on every state change.
//
// Lifecycle is designed as a library, not a service. Import it, configure
// a store, implement an Actor, and drive it with a Runner:
//
//	store := memory.New()
//	dispatcher := notify.NewDispatcher(logger, notify.NewStoreNotifier(store))
//	recorder := diag.NewRecorder(store, logger)
//	r := runner.New(store, recorder, dispatcher)
//
//	j := job.New("sync-members", "alice")
//	_ = store.CreateJob(ctx, j)
//	_ = r.Run(ctx, j, myActor)
//
// # Architecture
//
// The root package is the shared kernel: entity timestamps, error
// sentinels (including the job-state error taxonomy the run loop uses
// for terminal classification), and identity aliases. Each subsystem
// lives in its own package — job (record, statuses, progress, store
// contract), diag (diagnostic trail), notify (observer fan-out), track
// (stage/step execution scopes), runner (the run loop), middleware
// (cross-cutting wrappers around act), reaper (TTL eviction) — and the
// backends under store/ implement the persistence contracts.
//
// Execution is synchronous and single-writer: one run loop drives one
// job record to a terminal status. How jobs reach a worker, and whether
// two workers may hold the same job id, is the caller's concern.
package lifecycle
