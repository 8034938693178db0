package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaek-labs/flaek-go/internal/graph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPlan() *graph.Plan {
	return &graph.Plan{Steps: []graph.Step{{
		NodeID:    "a",
		BlockID:   "mb_create_permission",
		Inputs:    map[string]any{"payer": "$wallet"},
		DependsOn: []string{},
	}}}
}

// =============================================================================
// Creation and Retrieval
// =============================================================================

func TestCreateAndGetJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateJob(ctx, testPlan(), "er", map[string]any{"run": float64(1)})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, StatusPlanned, created.Status)

	got, err := s.GetJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, StatusPlanned, got.Status)
	assert.Equal(t, "er", got.ExecutionMode)
	require.NotNil(t, got.Plan)
	require.Len(t, got.Plan.Steps, 1)
	assert.Equal(t, "mb_create_permission", got.Plan.Steps[0].BlockID)
	assert.Equal(t, map[string]any{"run": float64(1)}, got.Context)
	assert.Empty(t, got.Signatures)
}

func TestGetJobNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListJobsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		job, err := s.CreateJob(ctx, testPlan(), "er", nil)
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	jobs, err := s.ListJobs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	// All three share a coarse timestamp ordering; the listed ids must come
	// from the created set.
	for _, job := range jobs {
		assert.Contains(t, ids, job.ID)
	}
}

// =============================================================================
// Lifecycle Transitions
// =============================================================================

func TestSubmitThenComplete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, testPlan(), "per", nil)
	require.NoError(t, err)

	require.NoError(t, s.SubmitJob(ctx, job.ID, []string{"sig1", "sig2"}, nil))
	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)
	assert.Equal(t, []string{"sig1", "sig2"}, got.Signatures)

	require.NoError(t, s.CompleteJob(ctx, job.ID, map[string]any{"ok": true}))
	got, err = s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, map[string]any{"ok": true}, got.Result)
}

func TestSubmitCancelledJobRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, testPlan(), "er", nil)
	require.NoError(t, err)
	require.NoError(t, s.CancelJob(ctx, job.ID))

	err = s.SubmitJob(ctx, job.ID, []string{"sig1"}, nil)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "job_cancelled", ite.Reason)
}

func TestCancelFinishedJobRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, testPlan(), "er", nil)
	require.NoError(t, err)
	require.NoError(t, s.CompleteJob(ctx, job.ID, nil))

	err = s.CancelJob(ctx, job.ID)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "job_already_finished", ite.Reason)
	assert.Equal(t, StatusCompleted, ite.From)
}

func TestFailJobRecordsError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, testPlan(), "er", nil)
	require.NoError(t, err)
	require.NoError(t, s.FailJob(ctx, job.ID, "transaction_failed (step b)"))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "transaction_failed (step b)", got.Error)
}

func TestTransitionOnMissingJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.True(t, errors.Is(s.SubmitJob(ctx, "missing", nil, nil), ErrNotFound))
	assert.True(t, errors.Is(s.CancelJob(ctx, "missing"), ErrNotFound))
	assert.True(t, errors.Is(s.CompleteJob(ctx, "missing", nil), ErrNotFound))
}

// =============================================================================
// Log Streams
// =============================================================================

func TestAppendAndReadLogs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, testPlan(), "er", nil)
	require.NoError(t, err)

	require.NoError(t, s.AppendLogs(ctx, job.ID, []LogEntry{
		{Message: "Building mb_create_permission"},
		{Message: "Submitted mb_create_permission: sig1"},
		{Level: "error", Message: "boom"},
	}))

	entries, err := s.JobLogs(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "Building mb_create_permission", entries[0].Message)
	assert.Equal(t, "error", entries[2].Level)
	assert.False(t, entries[0].At.IsZero())
}

func TestAppendLogsMissingJob(t *testing.T) {
	s := openTestStore(t)
	err := s.AppendLogs(context.Background(), "missing", []LogEntry{{Message: "x"}})
	assert.ErrorIs(t, err, ErrNotFound)
}
