package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
)

func newJob(jobType string) *job.Job {
	return job.New(jobType, "tester")
}

func TestJobCreateAndGet(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := newJob("group-sync")

	tests := []struct {
		name    string
		fn      func() error
		wantErr error
	}{
		{
			name:    "create new job",
			fn:      func() error { return s.CreateJob(ctx, j) },
			wantErr: nil,
		},
		{
			name:    "create duplicate job",
			fn:      func() error { return s.CreateJob(ctx, j) },
			wantErr: lifecycle.ErrJobAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Type != "group-sync" {
		t.Errorf("Type = %q, want %q", got.Type, "group-sync")
	}

	_, err = s.GetJob(ctx, id.NewJobID())
	if !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("GetJob(missing) = %v, want ErrJobNotFound", err)
	}
}

func TestGetJobReturnsCopy(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := newJob("group-sync")
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	got.UpdateStatus(job.StatusFailed)

	again, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Status != job.StatusPending {
		t.Errorf("mutating a returned copy leaked into the store: %q", again.Status)
	}
}

func TestUpdateAndRefreshJob(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := newJob("group-sync")
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	j.UpdateStatus(job.StatusRunning)
	if err := s.UpdateJob(ctx, j); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	// An independently held reference catches up via refresh.
	stale, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	j.UpdateStatus(job.StatusCancelRequested)
	if err := s.UpdateJob(ctx, j); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	if err := s.RefreshJob(ctx, stale); err != nil {
		t.Fatalf("RefreshJob: %v", err)
	}
	if stale.Status != job.StatusCancelRequested {
		t.Errorf("after refresh, status = %q, want %q", stale.Status, job.StatusCancelRequested)
	}

	missing := newJob("group-sync")
	if err := s.UpdateJob(ctx, missing); !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("UpdateJob(missing) = %v, want ErrJobNotFound", err)
	}
	if err := s.RefreshJob(ctx, missing); !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("RefreshJob(missing) = %v, want ErrJobNotFound", err)
	}
}

func TestListJobsFiltering(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	a := newJob("group-sync")
	b := newJob("group-sync")
	b.UpdateStatus(job.StatusRunning)
	c := newJob("report")

	for _, j := range []*job.Job{a, b, c} {
		if err := s.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}

	byType, err := s.ListJobs(ctx, job.ListOpts{Type: "group-sync"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byType) != 2 {
		t.Errorf("by type: got %d jobs, want 2", len(byType))
	}

	byStatus, err := s.ListJobs(ctx, job.ListOpts{Status: job.StatusRunning})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID.String() != b.ID.String() {
		t.Errorf("by status: got %v", byStatus)
	}

	limited, err := s.ListJobs(ctx, job.ListOpts{Limit: 2})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited: got %d jobs, want 2", len(limited))
	}
}

func TestDeleteJobRemovesDiagnostics(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := newJob("group-sync")
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	e := &diag.Entry{
		Entity:   lifecycle.NewEntity(),
		ID:       id.NewDiagnosticID(),
		JobID:    j.ID,
		Severity: diag.SeverityInfo,
		Message:  "started",
	}
	if err := s.AppendDiagnostic(ctx, e); err != nil {
		t.Fatalf("AppendDiagnostic: %v", err)
	}

	if err := s.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := s.GetJob(ctx, j.ID); !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("GetJob after delete = %v, want ErrJobNotFound", err)
	}
	entries, err := s.ListDiagnostics(ctx, j.ID, diag.ListOpts{})
	if err != nil {
		t.Fatalf("ListDiagnostics: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("diagnostics survived job deletion: %d entries", len(entries))
	}

	if err := s.DeleteJob(ctx, j.ID); !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("DeleteJob(missing) = %v, want ErrJobNotFound", err)
	}
}

func TestDiagnosticsAppendOrderAndFilters(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	jobID := id.NewJobID()

	entries := []*diag.Entry{
		{Entity: lifecycle.NewEntity(), ID: id.NewDiagnosticID(), JobID: jobID, Severity: diag.SeverityInfo, Message: "stage started", Stage: "resolve"},
		{Entity: lifecycle.NewEntity(), ID: id.NewDiagnosticID(), JobID: jobID, Severity: diag.SeverityCritical, Message: "step failed", Stage: "resolve", Step: "group-a"},
		{Entity: lifecycle.NewEntity(), ID: id.NewDiagnosticID(), JobID: jobID, Severity: diag.SeverityInfo, Message: "stage completed", Stage: "resolve"},
	}
	for _, e := range entries {
		if err := s.AppendDiagnostic(ctx, e); err != nil {
			t.Fatalf("AppendDiagnostic: %v", err)
		}
	}

	all, err := s.ListDiagnostics(ctx, jobID, diag.ListOpts{})
	if err != nil {
		t.Fatalf("ListDiagnostics: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	for i, e := range all {
		if e.Message != entries[i].Message {
			t.Errorf("entry %d = %q, want %q (append order)", i, e.Message, entries[i].Message)
		}
	}

	critical, err := s.ListDiagnostics(ctx, jobID, diag.ListOpts{Severity: diag.SeverityCritical})
	if err != nil {
		t.Fatalf("ListDiagnostics: %v", err)
	}
	if len(critical) != 1 || critical[0].Step != "group-a" {
		t.Errorf("severity filter: got %v", critical)
	}

	n, err := s.CountDiagnostics(ctx, jobID, diag.SeverityInfo)
	if err != nil {
		t.Fatalf("CountDiagnostics: %v", err)
	}
	if n != 2 {
		t.Errorf("info count = %d, want 2", n)
	}
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping before close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := s.Ping(ctx); !errors.Is(err, lifecycle.ErrStoreClosed) {
		t.Errorf("Ping after close = %v, want ErrStoreClosed", err)
	}
	if err := s.CreateJob(ctx, newJob("group-sync")); !errors.Is(err, lifecycle.ErrStoreClosed) {
		t.Errorf("CreateJob after close = %v, want ErrStoreClosed", err)
	}
	if _, err := s.ListJobs(ctx, job.ListOpts{}); !errors.Is(err, lifecycle.ErrStoreClosed) {
		t.Errorf("ListJobs after close = %v, want ErrStoreClosed", err)
	}
}

func TestListJobsNewestFirst(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	older := newJob("group-sync")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newJob("group-sync")

	for _, j := range []*job.Job{older, newer} {
		if err := s.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}

	jobs, err := s.ListJobs(ctx, job.ListOpts{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID.String() != newer.ID.String() {
		t.Errorf("first listed job is not the newest")
	}
}
