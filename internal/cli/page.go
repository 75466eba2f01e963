package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evsys/eventlint/internal/page"
)

// PageOptions holds flags for the page command.
type PageOptions struct {
	*RootOptions
}

// PageSummary is the JSON payload for a rendered page.
type PageSummary struct {
	Template string `json:"template"`
	Graph    string `json:"graph"`
	Output   string `json:"output"`
}

// NewPageCommand creates the page command.
func NewPageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "page <template> <graph> <output>",
		Short: "Render an HTML page from a template and a graph",
		Long: `Substitute a built element list into an HTML template. Inside blocks
delimited by the "/** +-+" and "-+- **/" marker lines, the tag {:graph:}
expands to the element list and {:graph_name:} to its file name; the
marker lines themselves are dropped.

Example:
  eventlint page viewer.html elements.json index.html`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(opts, args[0], args[1], args[2], cmd)
		},
	}

	return cmd
}

func runPage(opts *PageOptions, templatePath, graphPath, outputPath string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if err := page.RenderFile(templatePath, graphPath, outputPath, slog.Default()); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to render page", err)
	}

	summary := PageSummary{Template: templatePath, Graph: graphPath, Output: outputPath}
	if opts.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s\n", outputPath)
	return nil
}
