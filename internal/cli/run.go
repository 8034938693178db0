package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flaek-labs/flaek-go/internal/catalog"
	"github.com/flaek-labs/flaek-go/internal/driver"
	"github.com/flaek-labs/flaek-go/internal/graph"
	"github.com/flaek-labs/flaek-go/internal/netconfig"
	"github.com/flaek-labs/flaek-go/internal/resolve"
	"github.com/flaek-labs/flaek-go/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Context     string // inline JSON context
	ContextFile string // JSON context file path
	Keypair     string // Solana keygen file path
	Mode        string // "er" | "per"
	Validator   string // validator identity override
	VerifyTEE   bool   // probe the TEE attestation endpoint before running
	Network     string // network config YAML path
	DB          string // job database path (empty disables job records)
}

// RunOutput is the success payload of the run command.
type RunOutput struct {
	JobID      string   `json:"job_id,omitempty"`
	Mode       string   `json:"mode"`
	Signatures []string `json:"signatures"`
	AuthToken  string   `json:"auth_token,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <flow.yaml>",
		Short: "Compile and execute a flow",
		Long: `Compile a flow, resolve its context references, and execute the plan
step by step with a local keypair wallet.

In er mode transactions go to the ephemeral rollup router. In per mode the
driver authenticates against the TEE endpoint first and routes through the
token-scoped RPC URL.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Context, "context", "", "execution context as inline JSON")
	cmd.Flags().StringVar(&opts.ContextFile, "context-file", "", "execution context JSON file")
	cmd.Flags().StringVar(&opts.Keypair, "keypair", "", "path to a Solana keygen file")
	cmd.Flags().StringVar(&opts.Mode, "mode", "er", "execution mode (er|per)")
	cmd.Flags().StringVar(&opts.Validator, "validator", "", "validator identity for delegation blocks")
	cmd.Flags().BoolVar(&opts.VerifyTEE, "verify-tee", false, "verify the TEE attestation endpoint before running (per mode)")
	cmd.Flags().StringVar(&opts.Network, "network", "", "network config YAML file (defaults to devnet)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "job database path (enables job records)")
	_ = cmd.MarkFlagRequired("keypair")

	return cmd
}

func runRun(opts *RunOptions, flowPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	mode, err := parseMode(opts.Mode)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	flow, err := LoadFlow(flowPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	plan, err := graph.Compile(flow, catalog.Default())
	if err != nil {
		return outputGraphError(formatter, err)
	}
	formatter.VerboseLog("Compiled %d step(s)", len(plan.Steps))

	runContext, err := loadRunContext(opts)
	if err != nil {
		return outputCommandError(formatter, ErrCodeContextFailed, err.Error())
	}

	cfg, err := loadNetworkConfig(opts.Network)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfigFailed, err.Error())
	}

	wallet, err := driver.LoadKeypairWallet(opts.Keypair)
	if err != nil {
		return outputCommandError(formatter, ErrCodeWalletFailed, fmt.Sprintf("loading keypair: %v", err))
	}
	formatter.VerboseLog("Wallet: %s", wallet.Address())

	var jobs *store.Store
	var job *store.Job
	if opts.DB != "" {
		jobs, err = store.Open(opts.DB)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening job store: %v", err))
		}
		defer jobs.Close()

		job, err = jobs.CreateJob(cmd.Context(), plan, string(mode), runContext)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("creating job: %v", err))
		}
		formatter.VerboseLog("Job: %s", job.ID)
	}

	resolved, err := resolve.Resolve(plan, runContext)
	if err != nil {
		failJob(cmd, jobs, job, err.Error(), nil)
		_ = formatter.Error(ErrCodeContextFailed, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	var logLines []store.LogEntry
	result, err := driver.Execute(cmd.Context(), resolved, wallet, driver.Options{
		Mode:            mode,
		Validator:       opts.Validator,
		VerifyIntegrity: opts.VerifyTEE,
		Config:          cfg,
		OnLog: func(msg string) {
			fmt.Fprintln(formatter.GetErrWriter(), msg)
			logLines = append(logLines, store.LogEntry{Message: msg})
		},
	})
	if err != nil {
		logLines = append(logLines, store.LogEntry{Level: "error", Message: err.Error()})
		failJob(cmd, jobs, job, err.Error(), logLines)

		details := map[string]any{}
		if re, ok := driver.AsRunError(err); ok {
			details["reason"] = string(re.Code)
			if re.Step != "" {
				details["step"] = re.Step
			}
		}
		if result != nil && len(result.Signatures) > 0 {
			details["signatures"] = result.Signatures
		}
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), details)
		return NewExitError(ExitFailure, err.Error())
	}

	output := &RunOutput{
		Mode:       string(mode),
		Signatures: result.Signatures,
		AuthToken:  result.AuthToken,
	}
	if job != nil {
		output.JobID = job.ID
		ctx := cmd.Context()
		if err := jobs.AppendLogs(ctx, job.ID, logLines); err != nil {
			formatter.VerboseLog("appending job logs: %v", err)
		}
		if err := jobs.SubmitJob(ctx, job.ID, result.Signatures, nil); err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("recording submission: %v", err))
		}
		if err := jobs.CompleteJob(ctx, job.ID, map[string]any{"signatures": result.Signatures}); err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("completing job: %v", err))
		}
	}

	return outputRunSuccess(formatter, output)
}

func outputRunSuccess(formatter *OutputFormatter, output *RunOutput) error {
	if formatter.Format == "json" {
		return formatter.Success(output)
	}

	fmt.Fprintf(formatter.Writer, "✓ Executed %d step(s)\n", len(output.Signatures))
	for i, sig := range output.Signatures {
		fmt.Fprintf(formatter.Writer, "  %d. %s\n", i+1, sig)
	}
	if output.JobID != "" {
		fmt.Fprintf(formatter.Writer, "\nJob %s completed\n", output.JobID)
	}
	return nil
}

func parseMode(s string) (driver.Mode, error) {
	switch driver.Mode(s) {
	case driver.ModeER, driver.ModePER:
		return driver.Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be er or per", s)
	}
}

// loadRunContext reads the execution context from --context or --context-file.
func loadRunContext(opts *RunOptions) (map[string]any, error) {
	if opts.Context != "" && opts.ContextFile != "" {
		return nil, fmt.Errorf("--context and --context-file are mutually exclusive")
	}

	raw := []byte(opts.Context)
	if opts.ContextFile != "" {
		data, err := os.ReadFile(opts.ContextFile)
		if err != nil {
			return nil, fmt.Errorf("reading context file: %w", err)
		}
		raw = data
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var ctx map[string]any
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context JSON: %w", err)
	}
	return ctx, nil
}

func loadNetworkConfig(path string) (*netconfig.Config, error) {
	if path == "" {
		return netconfig.Default(), nil
	}
	return netconfig.Load(path)
}

// failJob records a failed run on the job record, if one exists.
func failJob(cmd *cobra.Command, jobs *store.Store, job *store.Job, message string, logs []store.LogEntry) {
	if jobs == nil || job == nil {
		return
	}
	ctx := cmd.Context()
	if len(logs) > 0 {
		_ = jobs.AppendLogs(ctx, job.ID, logs)
	}
	_ = jobs.FailJob(ctx, job.ID, message)
}
