package bunstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/xraph/lifecycle"
	"github.com/xraph/lifecycle/diag"
	"github.com/xraph/lifecycle/id"
	"github.com/xraph/lifecycle/job"
)

// ── Job model ─────────────────────────────────────────────────────

type jobModel struct {
	bun.BaseModel `bun:"table:lifecycle_jobs"`

	ID              string `bun:"id,pk"`
	Type            string `bun:"type,notnull"`
	Status          string `bun:"status,notnull,default:'pending'"`
	UIStatus        string `bun:"ui_status"`
	Data            []byte `bun:"data,type:jsonb"`
	CreatedBy       string `bun:"created_by,notnull"`
	Description     string `bun:"description"`
	TTL             int64  `bun:"ttl,notnull,default:0"`
	TotalUnits      int    `bun:"total_units,notnull,default:0"`
	DoneUnits       int    `bun:"done_units,notnull,default:0"`
	PercentOverride *int   `bun:"percent_override"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func toJobModel(j *job.Job) *jobModel {
	return &jobModel{
		ID:              j.ID.String(),
		Type:            j.Type,
		Status:          string(j.Status),
		UIStatus:        j.UIStatus,
		Data:            j.Data,
		CreatedBy:       j.CreatedBy,
		Description:     j.Description,
		TTL:             j.TTL.Nanoseconds(),
		TotalUnits:      j.Progress.TotalUnits,
		DoneUnits:       j.Progress.DoneUnits,
		PercentOverride: j.Progress.PercentOverride,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

func fromJobModel(m *jobModel) (*job.Job, error) {
	parsedID, err := id.ParseJobID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle/bun: parse job id %q: %w", m.ID, err)
	}

	return &job.Job{
		Entity: lifecycle.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          parsedID,
		Type:        m.Type,
		Status:      job.Status(m.Status),
		UIStatus:    m.UIStatus,
		Data:        m.Data,
		CreatedBy:   m.CreatedBy,
		Description: m.Description,
		TTL:         time.Duration(m.TTL),
		Progress: job.Progress{
			TotalUnits:      m.TotalUnits,
			DoneUnits:       m.DoneUnits,
			PercentOverride: m.PercentOverride,
		},
	}, nil
}

// ── Diagnostic model ──────────────────────────────────────────────

type diagModel struct {
	bun.BaseModel `bun:"table:lifecycle_diagnostics"`

	ID       string `bun:"id,pk"`
	JobID    string `bun:"job_id,notnull"`
	Severity string `bun:"severity,notnull"`
	Message  string `bun:"message,notnull"`
	Details  []byte `bun:"details,type:jsonb"`
	Stage    string `bun:"stage"`
	Step     string `bun:"step"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func toDiagModel(e *diag.Entry) (*diagModel, error) {
	var details []byte
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("lifecycle/bun: marshal diagnostic details: %w", err)
		}
		details = raw
	}
	return &diagModel{
		ID:        e.ID.String(),
		JobID:     e.JobID.String(),
		Severity:  string(e.Severity),
		Message:   e.Message,
		Details:   details,
		Stage:     e.Stage,
		Step:      e.Step,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}

func fromDiagModel(m *diagModel) (*diag.Entry, error) {
	parsedID, err := id.ParseDiagnosticID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle/bun: parse diagnostic id %q: %w", m.ID, err)
	}
	parsedJobID, err := id.ParseJobID(m.JobID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle/bun: parse job id %q: %w", m.JobID, err)
	}

	var details map[string]any
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, fmt.Errorf("lifecycle/bun: unmarshal diagnostic details: %w", err)
		}
	}

	return &diag.Entry{
		Entity: lifecycle.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       parsedID,
		JobID:    parsedJobID,
		Severity: diag.Severity(m.Severity),
		Message:  m.Message,
		Details:  details,
		Stage:    m.Stage,
		Step:     m.Step,
	}, nil
}
