package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// Store errors.
	ErrNoStore     = errors.New("lifecycle: no store configured")
	ErrStoreClosed = errors.New("lifecycle: store closed")

	// Not found errors.
	ErrJobNotFound        = errors.New("lifecycle: job not found")
	ErrDiagnosticNotFound = errors.New("lifecycle: diagnostic not found")

	// Conflict errors.
	ErrJobAlreadyExists = errors.New("lifecycle: job already exists")

	// Validation errors.
	ErrInvalidStatus = errors.New("lifecycle: invalid status transition")
	ErrPercentRange  = errors.New("lifecycle: percent override out of range")

	// ErrResumeUnsupported is returned by Runner.Resume when the actor
	// does not implement the Resumer re-entry point.
	ErrResumeUnsupported = errors.New("lifecycle: actor does not support resume")
)

// Job-state error taxonomy. ErrJobState is the base; the run loop
// classifies an act error by matching the subtypes with errors.Is, and
// every subtype wraps ErrJobState so the whole family also matches the
// base.
var (
	ErrJobState = errors.New("lifecycle: job state error")

	ErrJobFailed   = fmt.Errorf("lifecycle: job failed: %w", ErrJobState)
	ErrStageFailed = fmt.Errorf("lifecycle: stage failed: %w", ErrJobState)
	ErrStepFailed  = fmt.Errorf("lifecycle: step failed: %w", ErrJobState)
	ErrJobCanceled = fmt.Errorf("lifecycle: job canceled: %w", ErrJobState)
)
