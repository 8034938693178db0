package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flaek-labs/flaek-go/internal/catalog"
	"github.com/flaek-labs/flaek-go/internal/graph"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <flow.yaml>",
		Short: "Lint a flow for missing inputs and range violations",
		Long: `Lint a flow document ahead of compilation.

Lint reports required inputs with no value and no incoming edge, numeric
values outside their declared range, and unconnected nodes. Errors exit
with code 1; warnings alone exit cleanly.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, args[0], cmd)
		},
	}

	return cmd
}

func runLint(opts *LintOptions, flowPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	flow, err := LoadFlow(flowPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	report := graph.Lint(flow, catalog.Default())

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
		if !report.OK() {
			return NewExitError(ExitFailure, fmt.Sprintf("lint found %d error(s)", len(report.Errors)))
		}
		return nil
	}

	// Human-readable text output
	if report.OK() && len(report.Warnings) == 0 {
		fmt.Fprintln(formatter.Writer, "✓ No issues found")
		return nil
	}

	for _, issue := range report.Errors {
		fmt.Fprintf(formatter.Writer, "error [%s] %s: %s\n", issue.Code, issue.NodeID, issue.Message)
	}
	for _, issue := range report.Warnings {
		fmt.Fprintf(formatter.Writer, "warning [%s] %s: %s\n", issue.Code, issue.NodeID, issue.Message)
	}
	fmt.Fprintf(formatter.Writer, "\n%d error(s), %d warning(s)\n", len(report.Errors), len(report.Warnings))

	if !report.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("lint found %d error(s)", len(report.Errors)))
	}
	return nil
}
