package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flaek-labs/flaek-go/internal/catalog"
	"github.com/flaek-labs/flaek-go/internal/graph"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <flow.yaml>",
		Short: "Compile a flow into an execution plan",
		Long: `Compile a flow document into an ordered execution plan.

The compiler validates the graph against the block catalog, rejects cycles,
and emits a topologically ordered step list.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, flowPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	flow, err := LoadFlow(flowPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d node(s), %d edge(s) from %s", len(flow.Nodes), len(flow.Edges), flowPath)

	plan, err := graph.Compile(flow, catalog.Default())
	if err != nil {
		return outputGraphError(formatter, err)
	}

	if opts.Output != "" {
		if err := writePlanToFile(plan, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, plan, opts.Output)
}

// outputCompileSuccess outputs the compiled plan.
func outputCompileSuccess(formatter *OutputFormatter, plan *graph.Plan, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(plan)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d step(s)\n\n", len(plan.Steps))
	for i, step := range plan.Steps {
		if len(step.DependsOn) > 0 {
			fmt.Fprintf(formatter.Writer, "  %d. %s (%s) after %s\n",
				i+1, step.NodeID, step.BlockID, strings.Join(step.DependsOn, ", "))
		} else {
			fmt.Fprintf(formatter.Writer, "  %d. %s (%s)\n", i+1, step.NodeID, step.BlockID)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote plan to %s\n", outputFile)
	}

	return nil
}

// outputLoadError reports a flow loading failure as a command error.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return outputCommandError(formatter, loadErr.Code, loadErr.Message)
	}
	return outputCommandError(formatter, ErrCodeGeneric, err.Error())
}

// outputGraphError reports a graph validation failure as a command error.
func outputGraphError(formatter *OutputFormatter, err error) error {
	var compileErr *graph.CompileError
	if errors.As(err, &compileErr) {
		details := map[string]string{}
		if compileErr.NodeID != "" {
			details["node_id"] = compileErr.NodeID
		}
		if compileErr.EdgeID != "" {
			details["edge_id"] = compileErr.EdgeID
		}
		_ = formatter.Error(compileErr.Code, compileErr.Message, details)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", compileErr.Code, compileErr.Message))
	}
	return outputCommandError(formatter, ErrCodeCompileFailed, err.Error())
}

// outputCommandError outputs a single command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// writePlanToFile writes the plan to a file as indented JSON.
func writePlanToFile(plan *graph.Plan, filename string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
