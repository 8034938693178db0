package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flaek-labs/flaek-go/internal/graph"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusSubmitted Status = "submitted"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

// InvalidTransitionError reports a lifecycle move the current status does
// not allow.
type InvalidTransitionError struct {
	JobID  string
	From   Status
	Reason string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %s: %s (status %s)", e.JobID, e.Reason, e.From)
}

// Job is one persisted run of a compiled plan.
type Job struct {
	ID            string
	Status        Status
	ExecutionMode string
	Plan          *graph.Plan
	Context       map[string]any
	Signatures    []string
	Result        map[string]any
	Error         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LogEntry is one line of a job's log stream.
type LogEntry struct {
	Level   string
	Message string
	At      time.Time
}

// CreateJob stores a freshly compiled plan as a planned job and returns it.
func (s *Store) CreateJob(ctx context.Context, plan *graph.Plan, mode string, runContext map[string]any) (*Job, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("create job: marshal plan: %w", err)
	}
	var contextJSON []byte
	if runContext != nil {
		contextJSON, err = json.Marshal(runContext)
		if err != nil {
			return nil, fmt.Errorf("create job: marshal context: %w", err)
		}
	}

	job := &Job{
		ID:            uuid.NewString(),
		Status:        StatusPlanned,
		ExecutionMode: mode,
		Plan:          plan,
		Context:       runContext,
		Signatures:    []string{},
		CreatedAt:     time.Now().UTC(),
	}
	job.UpdatedAt = job.CreatedAt

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, status, execution_mode, plan, context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID,
		string(job.Status),
		job.ExecutionMode,
		string(planJSON),
		nullableString(contextJSON),
		job.CreatedAt.Format(time.RFC3339Nano),
		job.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// GetJob loads one job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, execution_mode, plan, context, tx_signatures, result, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListJobs returns the most recent jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, execution_mode, plan, context, tx_signatures, result, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SubmitJob records the signatures of a run and moves the job to submitted.
// A cancelled job cannot be submitted.
func (s *Store) SubmitJob(ctx context.Context, id string, signatures []string, result map[string]any) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == StatusCancelled {
		return &InvalidTransitionError{JobID: id, From: job.Status, Reason: "job_cancelled"}
	}

	sigJSON, err := json.Marshal(signatures)
	if err != nil {
		return fmt.Errorf("submit job: marshal signatures: %w", err)
	}
	resultJSON, err := marshalOptional(result)
	if err != nil {
		return fmt.Errorf("submit job: %w", err)
	}
	return s.setStatus(ctx, id, StatusSubmitted, map[string]any{
		"tx_signatures": string(sigJSON),
		"result":        resultJSON,
	})
}

// CompleteJob marks a job completed, optionally attaching a result payload.
func (s *Store) CompleteJob(ctx context.Context, id string, result map[string]any) error {
	if _, err := s.GetJob(ctx, id); err != nil {
		return err
	}
	resultJSON, err := marshalOptional(result)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return s.setStatus(ctx, id, StatusCompleted, map[string]any{"result": resultJSON})
}

// FailJob marks a job failed with the triggering error message.
func (s *Store) FailJob(ctx context.Context, id, message string) error {
	if _, err := s.GetJob(ctx, id); err != nil {
		return err
	}
	return s.setStatus(ctx, id, StatusFailed, map[string]any{"error": message})
}

// CancelJob cancels a pending job. Finished jobs (completed, failed, or
// already cancelled) cannot be cancelled again.
func (s *Store) CancelJob(ctx context.Context, id string) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	switch job.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return &InvalidTransitionError{JobID: id, From: job.Status, Reason: "job_already_finished"}
	}
	return s.setStatus(ctx, id, StatusCancelled, map[string]any{"error": "Job cancelled by user"})
}

// AppendLogs appends log entries to a job's stream. Entries with no
// timestamp get the current time; entries with no level default to info.
func (s *Store) AppendLogs(ctx context.Context, id string, entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := s.GetJob(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append logs: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		level := entry.Level
		if level == "" {
			level = "info"
		}
		at := entry.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO job_logs (job_id, level, message, at) VALUES (?, ?, ?, ?)
		`, id, level, entry.Message, at.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("append logs: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append logs: commit: %w", err)
	}
	return nil
}

// JobLogs returns a job's log stream in append order.
func (s *Store) JobLogs(ctx context.Context, id string) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, message, at FROM job_logs WHERE job_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("job logs: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var entry LogEntry
		var at string
		if err := rows.Scan(&entry.Level, &entry.Message, &at); err != nil {
			return nil, fmt.Errorf("job logs: %w", err)
		}
		entry.At, _ = time.Parse(time.RFC3339Nano, at)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// setStatus updates a job's status plus any extra columns in one statement.
func (s *Store) setStatus(ctx context.Context, id string, status Status, extra map[string]any) error {
	query := "UPDATE jobs SET status = ?, updated_at = ?"
	args := []any{string(status), time.Now().UTC().Format(time.RFC3339Nano)}
	for _, col := range []string{"tx_signatures", "result", "error"} {
		if v, ok := extra[col]; ok {
			query += ", " + col + " = ?"
			args = append(args, v)
		}
	}
	query += " WHERE id = ?"
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job                     Job
		status                  string
		planJSON, sigJSON       string
		contextJSON, resultJSON sql.NullString
		errMsg                  sql.NullString
		createdAt, updatedAt    string
	)
	err := row.Scan(&job.ID, &status, &job.ExecutionMode, &planJSON, &contextJSON,
		&sigJSON, &resultJSON, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	job.Status = Status(status)
	if err := json.Unmarshal([]byte(planJSON), &job.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if err := json.Unmarshal([]byte(sigJSON), &job.Signatures); err != nil {
		return nil, fmt.Errorf("unmarshal signatures: %w", err)
	}
	if contextJSON.Valid {
		if err := json.Unmarshal([]byte(contextJSON.String), &job.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
	}
	if resultJSON.Valid && resultJSON.String != "" {
		if err := json.Unmarshal([]byte(resultJSON.String), &job.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	job.Error = errMsg.String
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &job, nil
}

func marshalOptional(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return string(b), nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
