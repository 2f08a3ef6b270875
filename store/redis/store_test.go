//go:build integration

package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
	redisstore "github.com/xraph/lifecycle/store/redis"
)

func setupTestStore(t *testing.T) *redisstore.Store {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("get endpoint: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	t.Cleanup(func() {
		_ = client.Close()
	})

	s := redisstore.New(client)
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return s
}

func TestJobRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	j := job.New("group-sync", "tester", job.WithData([]byte(`{"source":"ldap"}`)))
	j.AddTotalUnits(4)
	j.AddDoneUnits(1)

	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := s.CreateJob(ctx, j); !errors.Is(err, lifecycle.ErrJobAlreadyExists) {
		t.Fatalf("duplicate create = %v, want ErrJobAlreadyExists", err)
	}

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Type != "group-sync" || got.CreatedBy != "tester" {
		t.Errorf("fields did not round trip: %+v", got)
	}
	if string(got.Data) != `{"source":"ldap"}` {
		t.Errorf("data = %s", got.Data)
	}
	if got.PercentProgress() != 25 {
		t.Errorf("progress = %d%%, want 25", got.PercentProgress())
	}
	if got.TTL != job.DefaultTTL {
		t.Errorf("ttl = %v, want %v", got.TTL, job.DefaultTTL)
	}
}

func TestUpdateAndRefresh(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	j := job.New("group-sync", "tester")
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	stored, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	stored.UpdateStatus(job.StatusRunning)
	if err := stored.Progress.SetPercentOverride(60); err != nil {
		t.Fatalf("SetPercentOverride: %v", err)
	}
	if err := s.UpdateJob(ctx, stored); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	if err := s.RefreshJob(ctx, j); err != nil {
		t.Fatalf("RefreshJob: %v", err)
	}
	if j.Status != job.StatusRunning {
		t.Errorf("refreshed status = %q", j.Status)
	}
	if j.PercentProgress() != 60 {
		t.Errorf("override did not round trip, progress = %d%%", j.PercentProgress())
	}

	missing := job.New("group-sync", "tester")
	if err := s.UpdateJob(ctx, missing); !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("update missing = %v, want ErrJobNotFound", err)
	}
}

func TestListJobsFilters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := job.New("group-sync", "tester")
	b := job.New("report", "tester")
	b.UpdateStatus(job.StatusSuccess)
	for _, j := range []*job.Job{a, b} {
		if err := s.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}

	all, err := s.ListJobs(ctx, job.ListOpts{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}

	done, err := s.ListJobs(ctx, job.ListOpts{Status: job.StatusSuccess})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(done) != 1 || done[0].ID.String() != b.ID.String() {
		t.Errorf("status filter returned %d jobs", len(done))
	}

	syncs, err := s.ListJobs(ctx, job.ListOpts{Type: "group-sync"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(syncs) != 1 || syncs[0].ID.String() != a.ID.String() {
		t.Errorf("type filter returned %d jobs", len(syncs))
	}
}

func TestDeleteJobRemovesDiagnostics(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	j := job.New("group-sync", "tester")
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	e := &diag.Entry{
		Entity:   lifecycle.NewEntity(),
		ID:       id.NewDiagnosticID(),
		JobID:    j.ID,
		Severity: diag.SeverityCritical,
		Message:  "step failed",
		Details:  map[string]any{"error": "timeout"},
		Stage:    "apply",
		Step:     "change-1",
	}
	if err := s.AppendDiagnostic(ctx, e); err != nil {
		t.Fatalf("AppendDiagnostic: %v", err)
	}

	if err := s.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if err := s.DeleteJob(ctx, j.ID); !errors.Is(err, lifecycle.ErrJobNotFound) {
		t.Fatalf("second delete = %v, want ErrJobNotFound", err)
	}

	n, err := s.CountDiagnostics(ctx, j.ID, "")
	if err != nil {
		t.Fatalf("CountDiagnostics: %v", err)
	}
	if n != 0 {
		t.Errorf("diagnostics survived delete: %d", n)
	}
}

func TestDiagnosticsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	j := job.New("group-sync", "tester")
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	for _, e := range []*diag.Entry{
		{
			Entity:   lifecycle.NewEntity(),
			ID:       id.NewDiagnosticID(),
			JobID:    j.ID,
			Severity: diag.SeverityInfo,
			Message:  "stage started",
			Stage:    "resolve",
		},
		{
			Entity:   lifecycle.NewEntity(),
			ID:       id.NewDiagnosticID(),
			JobID:    j.ID,
			Severity: diag.SeverityCritical,
			Message:  "step failed",
			Details:  map[string]any{"error": "timeout"},
			Stage:    "apply",
			Step:     "change-1",
		},
	} {
		if err := s.AppendDiagnostic(ctx, e); err != nil {
			t.Fatalf("AppendDiagnostic: %v", err)
		}
	}

	entries, err := s.ListDiagnostics(ctx, j.ID, diag.ListOpts{})
	if err != nil {
		t.Fatalf("ListDiagnostics: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Message != "stage started" || entries[1].Message != "step failed" {
		t.Errorf("append order not preserved: %q, %q", entries[0].Message, entries[1].Message)
	}
	if entries[1].Details["error"] != "timeout" {
		t.Errorf("details did not round trip: %v", entries[1].Details)
	}

	crit, err := s.ListDiagnostics(ctx, j.ID, diag.ListOpts{Severity: diag.SeverityCritical})
	if err != nil {
		t.Fatalf("ListDiagnostics: %v", err)
	}
	if len(crit) != 1 || crit[0].Step != "change-1" {
		t.Errorf("severity filter returned %d entries", len(crit))
	}

	n, err := s.CountDiagnostics(ctx, j.ID, diag.SeverityInfo)
	if err != nil {
		t.Fatalf("CountDiagnostics: %v", err)
	}
	if n != 1 {
		t.Errorf("info count = %d, want 1", n)
	}
}
