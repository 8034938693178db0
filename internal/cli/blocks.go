package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flaek-labs/flaek-go/internal/catalog"
)

// BlocksOptions holds flags for the blocks command.
type BlocksOptions struct {
	*RootOptions
	Category string // filter by category
	Search   string // filter by name/description/tag substring
}

// NewBlocksCommand creates the blocks command.
func NewBlocksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlocksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the available blocks",
		Long: `List the block catalog.

Each block is one on-chain instruction template. Use --category or --search
to narrow the listing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category (permission|delegation|magic|program|state)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "filter by name, description, or tag")

	return cmd
}

func runBlocks(opts *BlocksOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat := catalog.Default()
	var blocks []catalog.Definition
	switch {
	case opts.Category != "":
		blocks = cat.ByCategory(catalog.Category(opts.Category))
	case opts.Search != "":
		blocks = cat.Search(opts.Search)
	default:
		blocks = cat.All()
	}

	if formatter.Format == "json" {
		return formatter.Success(blocks)
	}

	if len(blocks) == 0 {
		fmt.Fprintln(formatter.Writer, "No blocks matched.")
		return nil
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tNAME")
	for _, b := range blocks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Category, b.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "\n%d block(s)\n", len(blocks))
	return nil
}
