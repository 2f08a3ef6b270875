// Package job defines the job entity, its status state machine,
// progress accounting, and the persistence contract.
//
// # Job Entity
//
// A [Job] represents a unit of work. It embeds [lifecycle.Entity] for
// timestamps, carries an opaque payload (JSON) supplied at creation,
// and moves through the status lifecycle:
//
//	pending → request_ack → running → success
//	pending → request_ack → running → success_with_warning
//	pending → request_ack → running → failed | errored
//	pending → cancel_requested → request_ack → canceled
//
// The failed/errored split mirrors the error taxonomy: failures are
// classified conditions raised through the lifecycle state errors
// (ErrJobFailed and friends), errored means the act crashed on
// something unclassified.
//
// # UI status
//
// Every status has a fixed display text (see [UIStatusFor]) applied by
// [Job.UpdateStatus]; callers can override it with an explicit text.
// The display projection is a stable, externally visible contract.
//
// # Progress
//
// [Progress] counts work in total/done units, with an optional pinned
// percentage override. One step of a staged run conventionally accounts
// for one done unit.
package job
