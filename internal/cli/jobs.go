package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flaek-labs/flaek-go/internal/store"
)

// JobsOptions holds flags shared by the jobs subcommands.
type JobsOptions struct {
	*RootOptions
	DB    string // job database path
	Limit int    // list page size
}

// JobSummary is the JSON list shape for one job.
type JobSummary struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ExecutionMode string `json:"execution_mode"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// JobDetail is the JSON show shape for one job.
type JobDetail struct {
	JobSummary
	Signatures []string       `json:"signatures"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Logs       []JobLogLine   `json:"logs"`
	Context    map[string]any `json:"context,omitempty"`
}

// JobLogLine is one log entry in the show output.
type JobLogLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	At      string `json:"at"`
}

// NewJobsCommand creates the jobs command group.
func NewJobsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JobsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect recorded runs",
		Long:  "List and inspect job records written by flaek run --db.",
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "flaek.db", "job database path")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List recent jobs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsList(opts, cmd)
		},
	}
	list.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of jobs to list")

	show := &cobra.Command{
		Use:           "show <job-id>",
		Short:         "Show one job with its log stream",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsShow(opts, args[0], cmd)
		},
	}

	cancel := &cobra.Command{
		Use:           "cancel <job-id>",
		Short:         "Cancel a pending job",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsCancel(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(show)
	cmd.AddCommand(cancel)

	return cmd
}

func runJobsList(opts *JobsOptions, cmd *cobra.Command) error {
	formatter := newJobsFormatter(opts, cmd)

	jobs, err := store.Open(opts.DB)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening job store: %v", err))
	}
	defer jobs.Close()

	list, err := jobs.ListJobs(cmd.Context(), opts.Limit)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("listing jobs: %v", err))
	}

	if formatter.Format == "json" {
		summaries := make([]JobSummary, 0, len(list))
		for _, job := range list {
			summaries = append(summaries, summarizeJob(job))
		}
		return formatter.Success(summaries)
	}

	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "No jobs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tMODE\tCREATED")
	for _, job := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			job.ID, job.Status, job.ExecutionMode, job.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runJobsShow(opts *JobsOptions, jobID string, cmd *cobra.Command) error {
	formatter := newJobsFormatter(opts, cmd)

	jobs, err := store.Open(opts.DB)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening job store: %v", err))
	}
	defer jobs.Close()

	job, err := jobs.GetJob(cmd.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("job not found: %s", jobID))
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("loading job: %v", err))
	}
	entries, err := jobs.JobLogs(cmd.Context(), jobID)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("loading job logs: %v", err))
	}

	detail := JobDetail{
		JobSummary: summarizeJob(job),
		Signatures: job.Signatures,
		Result:     job.Result,
		Error:      job.Error,
		Context:    job.Context,
		Logs:       make([]JobLogLine, 0, len(entries)),
	}
	for _, entry := range entries {
		detail.Logs = append(detail.Logs, JobLogLine{
			Level:   entry.Level,
			Message: entry.Message,
			At:      entry.At.Format(time.RFC3339),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	fmt.Fprintf(formatter.Writer, "Job:     %s\n", detail.ID)
	fmt.Fprintf(formatter.Writer, "Status:  %s\n", detail.Status)
	fmt.Fprintf(formatter.Writer, "Mode:    %s\n", detail.ExecutionMode)
	fmt.Fprintf(formatter.Writer, "Created: %s\n", detail.CreatedAt)
	if detail.Error != "" {
		fmt.Fprintf(formatter.Writer, "Error:   %s\n", detail.Error)
	}
	if len(detail.Signatures) > 0 {
		fmt.Fprintln(formatter.Writer, "\nSignatures:")
		for i, sig := range detail.Signatures {
			fmt.Fprintf(formatter.Writer, "  %d. %s\n", i+1, sig)
		}
	}
	if len(detail.Logs) > 0 {
		fmt.Fprintln(formatter.Writer, "\nLogs:")
		for _, line := range detail.Logs {
			fmt.Fprintf(formatter.Writer, "  [%s] %s %s\n", line.Level, line.At, line.Message)
		}
	}
	return nil
}

func runJobsCancel(opts *JobsOptions, jobID string, cmd *cobra.Command) error {
	formatter := newJobsFormatter(opts, cmd)

	jobs, err := store.Open(opts.DB)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening job store: %v", err))
	}
	defer jobs.Close()

	err = jobs.CancelJob(cmd.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("job not found: %s", jobID))
	}
	var ite *store.InvalidTransitionError
	if errors.As(err, &ite) {
		_ = formatter.Error(ErrCodeStoreFailed, ite.Error(), map[string]string{"reason": ite.Reason})
		return NewExitError(ExitFailure, ite.Error())
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("cancelling job: %v", err))
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"id": jobID, "status": string(store.StatusCancelled)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Job %s cancelled\n", jobID)
	return nil
}

func newJobsFormatter(opts *JobsOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func summarizeJob(job *store.Job) JobSummary {
	return JobSummary{
		ID:            job.ID,
		Status:        string(job.Status),
		ExecutionMode: job.ExecutionMode,
		CreatedAt:     job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     job.UpdatedAt.Format(time.RFC3339),
	}
}
