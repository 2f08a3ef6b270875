package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
)

// CreateJob stores the job as a Hash and records its ID for enumeration.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	jID := j.ID.String()
	key := jobKey(jID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("lifecycle/redis: create check exists: %w", err)
	}
	if exists > 0 {
		return lifecycle.ErrJobAlreadyExists
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, jobToMap(j))
	pipe.SAdd(ctx, jobIDsKey, jID)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("lifecycle/redis: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	return s.getJobByKey(ctx, jobKey(jobID.String()))
}

// UpdateJob persists changes to an existing job.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	key := jobKey(j.ID.String())

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("lifecycle/redis: update check exists: %w", err)
	}
	if exists == 0 {
		return lifecycle.ErrJobNotFound
	}

	if _, err = s.client.HSet(ctx, key, jobToMap(j)).Result(); err != nil {
		return fmt.Errorf("lifecycle/redis: update job: %w", err)
	}
	return nil
}

// RefreshJob replaces j's fields with the stored record.
func (s *Store) RefreshJob(ctx context.Context, j *job.Job) error {
	fresh, err := s.getJobByKey(ctx, jobKey(j.ID.String()))
	if err != nil {
		return err
	}
	*j = *fresh
	return nil
}

// ListJobs returns jobs matching opts, newest first.
func (s *Store) ListJobs(ctx context.Context, opts job.ListOpts) ([]*job.Job, error) {
	ids, err := s.client.SMembers(ctx, jobIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("lifecycle/redis: list jobs smembers: %w", err)
	}

	jobs := make([]*job.Job, 0, len(ids))
	for _, jID := range ids {
		j, getErr := s.getJobByKey(ctx, jobKey(jID))
		if getErr != nil {
			continue // skip records deleted between SMembers and HGetAll
		}
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		if opts.Type != "" && j.Type != opts.Type {
			continue
		}
		jobs = append(jobs, j)
	}

	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		}
		return jobs[a].ID.String() < jobs[b].ID.String()
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(jobs) {
			return nil, nil
		}
		jobs = jobs[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(jobs) {
		jobs = jobs[:opts.Limit]
	}
	return jobs, nil
}

// DeleteJob removes a job and its diagnostic trail.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	jID := jobID.String()
	key := jobKey(jID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("lifecycle/redis: delete check exists: %w", err)
	}
	if exists == 0 {
		return lifecycle.ErrJobNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, jobIDsKey, jID)
	pipe.Del(ctx, diagKey(jID))
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("lifecycle/redis: delete job: %w", err)
	}
	return nil
}

// ── helpers ──

func jobToMap(j *job.Job) map[string]interface{} {
	m := map[string]interface{}{
		"id":            j.ID.String(),
		"type":          j.Type,
		"status":        string(j.Status),
		"ui_status":     j.UIStatus,
		"data":          string(j.Data),
		"created_by":    j.CreatedBy,
		"description":   j.Description,
		"ttl":           strconv.FormatInt(int64(j.TTL), 10),
		"total_units":   strconv.Itoa(j.Progress.TotalUnits),
		"done_units":    strconv.Itoa(j.Progress.DoneUnits),
		"current_stage": j.CurrentStage,
		"current_step":  j.CurrentStep,
		"created_at":    j.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    j.UpdatedAt.Format(time.RFC3339Nano),
	}
	if j.Progress.PercentOverride != nil {
		m["percent_override"] = strconv.Itoa(*j.Progress.PercentOverride)
	} else {
		m["percent_override"] = ""
	}
	return m
}

func (s *Store) getJobByKey(ctx context.Context, key string) (*job.Job, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("lifecycle/redis: get job: %w", err)
	}
	if len(vals) == 0 {
		return nil, lifecycle.ErrJobNotFound
	}
	return mapToJob(vals)
}

func mapToJob(m map[string]string) (*job.Job, error) {
	jID, err := id.ParseJobID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("lifecycle/redis: parse job id: %w", err)
	}

	ttl, _ := strconv.ParseInt(m["ttl"], 10, 64)    //nolint:errcheck // best-effort parse from trusted Redis data
	totalUnits, _ := strconv.Atoi(m["total_units"]) //nolint:errcheck // best-effort parse from trusted Redis data
	doneUnits, _ := strconv.Atoi(m["done_units"])   //nolint:errcheck // best-effort parse from trusted Redis data

	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"]) //nolint:errcheck // best-effort parse from trusted Redis data
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"]) //nolint:errcheck // best-effort parse from trusted Redis data

	j := &job.Job{
		Entity: lifecycle.Entity{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
		ID:          jID,
		Type:        m["type"],
		Status:      job.Status(m["status"]),
		UIStatus:    m["ui_status"],
		CreatedBy:   m["created_by"],
		Description: m["description"],
		TTL:         time.Duration(ttl),
		Progress: job.Progress{
			TotalUnits: totalUnits,
			DoneUnits:  doneUnits,
		},
		CurrentStage: m["current_stage"],
		CurrentStep:  m["current_step"],
	}
	if v := m["data"]; v != "" {
		j.Data = []byte(v)
	}
	if v := m["percent_override"]; v != "" {
		pct, pErr := strconv.Atoi(v)
		if pErr == nil {
			j.Progress.PercentOverride = &pct
		}
	}
	return j, nil
}
