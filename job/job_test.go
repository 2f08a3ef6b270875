package job_test

import (
	"errors"
	"testing"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/job"
)

func TestNewDefaults(t *testing.T) {
	j := job.New("sync-members", "alice")

	if j.ID.IsNil() {
		t.Fatal("expected a generated job ID")
	}
	if j.Status != job.StatusPending {
		t.Errorf("Status = %q, want %q", j.Status, job.StatusPending)
	}
	if j.UIStatus != "Pending" {
		t.Errorf("UIStatus = %q, want %q", j.UIStatus, "Pending")
	}
	if j.TTL != job.DefaultTTL {
		t.Errorf("TTL = %v, want %v", j.TTL, job.DefaultTTL)
	}
	if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
		t.Error("expected entity timestamps to be set")
	}
}

func TestUpdateStatusDerivesUIStatus(t *testing.T) {
	tests := []struct {
		status job.Status
		ui     string
	}{
		{job.StatusPending, "Pending"},
		{job.StatusRequestAck, "Acknowledged"},
		{job.StatusRunning, "Running"},
		{job.StatusFailed, "Failed"},
		{job.StatusErrored, "Errored"},
		{job.StatusSuccess, "Success"},
		{job.StatusSuccessWithWarning, "Success with warning(s)"},
		{job.StatusCancelRequested, "Cancel requested"},
		{job.StatusCanceled, "Canceled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			j := job.New("t", "tester")
			j.UpdateStatus(tt.status)
			if j.Status != tt.status {
				t.Errorf("Status = %q, want %q", j.Status, tt.status)
			}
			if j.UIStatus != tt.ui {
				t.Errorf("UIStatus = %q, want %q", j.UIStatus, tt.ui)
			}
		})
	}
}

func TestUpdateStatusWithoutMappingKeepsUIStatus(t *testing.T) {
	j := job.New("t", "tester")
	j.UpdateStatus(job.StatusRunning)
	j.UpdateStatus(job.StatusPaused)

	if j.Status != job.StatusPaused {
		t.Errorf("Status = %q, want %q", j.Status, job.StatusPaused)
	}
	if j.UIStatus != "Running" {
		t.Errorf("UIStatus = %q, want previous %q", j.UIStatus, "Running")
	}
}

func TestUpdateStatusUIOverride(t *testing.T) {
	j := job.New("t", "tester")
	j.UpdateStatusUI(job.StatusRunning, "Crunching numbers")
	if j.UIStatus != "Crunching numbers" {
		t.Errorf("UIStatus = %q, want explicit override", j.UIStatus)
	}

	// The next mapped transition replaces the override.
	j.UpdateStatus(job.StatusSuccess)
	if j.UIStatus != "Success" {
		t.Errorf("UIStatus = %q, want %q", j.UIStatus, "Success")
	}
}

func TestUpdateStatusIdempotence(t *testing.T) {
	j := job.New("t", "tester")
	j.UpdateStatus(job.StatusRunning)
	first := j.UpdatedAt

	time.Sleep(time.Millisecond)
	j.UpdateStatus(job.StatusRunning)

	if j.Status != job.StatusRunning {
		t.Errorf("Status = %q, want unchanged %q", j.Status, job.StatusRunning)
	}
	if !j.UpdatedAt.After(first) {
		t.Error("expected UpdatedAt to advance on repeated update")
	}
}

func TestStatusSets(t *testing.T) {
	for _, s := range job.TerminalStatuses {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	for _, s := range job.IntermediateStatuses {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
	for _, s := range job.GoodStatuses {
		if !s.IsGood() || s.IsBad() {
			t.Errorf("%q should be good and not bad", s)
		}
	}
	for _, s := range job.BadStatuses {
		if !s.IsBad() || s.IsGood() {
			t.Errorf("%q should be bad and not good", s)
		}
	}
}

func TestRequestCancel(t *testing.T) {
	j := job.New("t", "tester")
	if err := j.RequestCancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Status != job.StatusCancelRequested {
		t.Errorf("Status = %q, want %q", j.Status, job.StatusCancelRequested)
	}
	if j.UIStatus != "Cancel requested" {
		t.Errorf("UIStatus = %q, want %q", j.UIStatus, "Cancel requested")
	}
}

func TestRequestCancelRejectsTerminal(t *testing.T) {
	for _, s := range job.TerminalStatuses {
		t.Run(string(s), func(t *testing.T) {
			j := job.New("t", "tester")
			j.UpdateStatus(s)
			err := j.RequestCancel()
			if !errors.Is(err, lifecycle.ErrInvalidStatus) {
				t.Errorf("err = %v, want ErrInvalidStatus", err)
			}
			if j.Status != s {
				t.Errorf("Status = %q, want unchanged %q", j.Status, s)
			}
		})
	}
}

func TestHasExpired(t *testing.T) {
	now := time.Now().UTC()

	j := job.New("t", "tester", job.WithTTL(0))
	j.CreatedAt = now.Add(-time.Second)
	if !j.HasExpired(now) {
		t.Error("ttl=0 with created_at in the past should be expired")
	}
	if !j.IsStale(now) {
		t.Error("IsStale should mirror HasExpired")
	}

	j2 := job.New("t", "tester", job.WithTTL(time.Hour))
	j2.CreatedAt = now
	if j2.HasExpired(now) {
		t.Error("fresh job with 1h ttl should not be expired")
	}
	if !j2.HasExpired(now.Add(time.Hour)) {
		t.Error("job should be expired exactly at created_at+ttl")
	}
}

func TestStateErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   error
	}{
		{"Failf", job.Failf("boom %d", 1), lifecycle.ErrJobFailed},
		{"StageFailf", job.StageFailf("boom"), lifecycle.ErrStageFailed},
		{"StepFailf", job.StepFailf("boom"), lifecycle.ErrStepFailed},
		{"Cancelf", job.Cancelf("operator request"), lifecycle.ErrJobCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.is) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.is)
			}
			if !errors.Is(tt.err, lifecycle.ErrJobState) {
				t.Errorf("%v should match the ErrJobState base", tt.err)
			}
		})
	}
}
