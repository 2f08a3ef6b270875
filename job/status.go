package job

// Status represents the lifecycle status of a job.
type Status string

const (
	// StatusPending means the job has been created but no worker has
	// picked it up yet.
	StatusPending Status = "pending"
	// StatusRequestAck means a worker has acknowledged the job and is
	// about to execute it.
	StatusRequestAck Status = "request_ack"
	// StatusRunning means the job's act is currently executing.
	StatusRunning Status = "running"
	// StatusFailed means the job failed for a classified reason.
	StatusFailed Status = "failed"
	// StatusErrored means the job crashed on an unclassified error.
	StatusErrored Status = "errored"
	// StatusSuccess means the job finished successfully.
	StatusSuccess Status = "success"
	// StatusSuccessWithWarning means the job finished but a post-run
	// hook failed afterwards.
	StatusSuccessWithWarning Status = "success_with_warning"
	// StatusCancelRequested means an external actor asked the job to
	// stop; the run loop honors it before entering running.
	StatusCancelRequested Status = "cancel_requested"
	// StatusCanceled means the job was canceled.
	StatusCanceled Status = "canceled"
	// StatusPaused means the job is suspended awaiting resume.
	StatusPaused Status = "paused"
)

// TerminalStatuses is the set of statuses a job never leaves on its own,
// with the single exception of the run loop's demotion of
// StatusSuccess to StatusSuccessWithWarning when a post-run hook fails.
var TerminalStatuses = []Status{
	StatusFailed,
	StatusErrored,
	StatusSuccess,
	StatusSuccessWithWarning,
	StatusCanceled,
}

// IntermediateStatuses is the set of non-deterministic, in-flight statuses.
var IntermediateStatuses = []Status{
	StatusRunning,
	StatusCancelRequested,
	StatusRequestAck,
	StatusPaused,
}

// GoodStatuses is the subset of terminal statuses that count as success.
var GoodStatuses = []Status{StatusSuccess, StatusSuccessWithWarning}

// BadStatuses is the subset of terminal statuses that count as failure.
var BadStatuses = []Status{StatusFailed, StatusErrored}

// IsTerminal reports whether s is a terminal status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFailed, StatusErrored, StatusSuccess, StatusSuccessWithWarning, StatusCanceled:
		return true
	}
	return false
}

// IsGood reports whether s is a successful terminal status.
func (s Status) IsGood() bool {
	return s == StatusSuccess || s == StatusSuccessWithWarning
}

// IsBad reports whether s is a failed terminal status.
func (s Status) IsBad() bool {
	return s == StatusFailed || s == StatusErrored
}

// uiStatuses is the fixed status-to-display-text mapping. StatusPaused
// deliberately has no entry: updating to a status without a mapping
// leaves the UI status untouched.
var uiStatuses = map[Status]string{
	StatusPending:            "Pending",
	StatusRequestAck:         "Acknowledged",
	StatusRunning:            "Running",
	StatusFailed:             "Failed",
	StatusErrored:            "Errored",
	StatusSuccess:            "Success",
	StatusSuccessWithWarning: "Success with warning(s)",
	StatusCancelRequested:    "Cancel requested",
	StatusCanceled:           "Canceled",
}

// UIStatusFor returns the display text for a status and whether a
// mapping exists.
func UIStatusFor(s Status) (string, bool) {
	ui, ok := uiStatuses[s]
	return ui, ok
}
