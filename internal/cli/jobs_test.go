package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaek-labs/flaek-go/internal/graph"
	"github.com/flaek-labs/flaek-go/internal/store"
)

// seedJobDB creates a job database with one completed job and returns the
// database path and job id.
func seedJobDB(t *testing.T) (string, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "flaek.db")

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	plan := &graph.Plan{Steps: []graph.Step{{
		NodeID:  "a",
		BlockID: "mb_topup_escrow",
		Inputs:  map[string]any{"amount": float64(10)},
	}}}
	job, err := s.CreateJob(ctx, plan, "er", nil)
	require.NoError(t, err)
	require.NoError(t, s.AppendLogs(ctx, job.ID, []store.LogEntry{
		{Message: "Building a"},
		{Message: "Submitted a: sig1"},
	}))
	require.NoError(t, s.SubmitJob(ctx, job.ID, []string{"sig1"}, nil))
	require.NoError(t, s.CompleteJob(ctx, job.ID, nil))

	return dbPath, job.ID
}

func TestJobsList(t *testing.T) {
	dbPath, jobID := seedJobDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, jobID)
	assert.Contains(t, output, "completed")
}

func TestJobsListEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "flaek.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No jobs recorded.")
}

func TestJobsShow(t *testing.T) {
	dbPath, jobID := seedJobDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"show", jobID, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, jobID)
	assert.Contains(t, output, "Status:  completed")
	assert.Contains(t, output, "sig1")
	assert.Contains(t, output, "Building a")
}

func TestJobsShowJSON(t *testing.T) {
	dbPath, jobID := seedJobDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"show", jobID, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   JobDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, jobID, resp.Data.ID)
	assert.Equal(t, []string{"sig1"}, resp.Data.Signatures)
	require.Len(t, resp.Data.Logs, 2)
	assert.Equal(t, "info", resp.Data.Logs[0].Level)
}

func TestJobsCancelPendingJob(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "flaek.db")

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	plan := &graph.Plan{Steps: []graph.Step{{NodeID: "a", BlockID: "mb_magic_commit"}}}
	job, err := s.CreateJob(context.Background(), plan, "er", nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"cancel", job.ID, "--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "cancelled")

	s, err = store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCancelled, got.Status)
	assert.Equal(t, "Job cancelled by user", got.Error)
}

func TestJobsCancelFinishedJob(t *testing.T) {
	dbPath, jobID := seedJobDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"cancel", jobID, "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "job_already_finished")
}

func TestJobsShowNotFound(t *testing.T) {
	dbPath, _ := seedJobDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJobsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"show", "missing-id", "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "job not found")
}
