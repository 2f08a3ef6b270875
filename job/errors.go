package job

import (
	"errors"
	"fmt"

	"github.com/xraph/lifecycle"
)

// Failf returns a job-failure error carrying a formatted reason.
// The run loop classifies it to StatusFailed via errors.Is.
func Failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", lifecycle.ErrJobFailed, fmt.Sprintf(format, args...))
}

// StageFailf returns a stage-failure error carrying a formatted reason.
func StageFailf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", lifecycle.ErrStageFailed, fmt.Sprintf(format, args...))
}

// StepFailf returns a step-failure error carrying a formatted reason.
func StepFailf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", lifecycle.ErrStepFailed, fmt.Sprintf(format, args...))
}

// IsStateError reports whether err belongs to the job state error
// taxonomy, at any level of wrapping.
func IsStateError(err error) bool {
	return errors.Is(err, lifecycle.ErrJobState)
}

// Cancelf returns a cancellation error carrying a formatted reason.
// The run loop classifies it to StatusCanceled via errors.Is.
func Cancelf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", lifecycle.ErrJobCanceled, fmt.Sprintf(format, args...))
}
