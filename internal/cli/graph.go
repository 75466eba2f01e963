package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evsys/eventlint/internal/graph"
	"github.com/evsys/eventlint/internal/model"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Output     string
	Neo4jURI   string
	Neo4jUser  string
	Neo4jPass  string
	Neo4jClean bool
}

// GraphSummary is the JSON payload for a completed graph build.
type GraphSummary struct {
	Elements int    `json:"elements"`
	Output   string `json:"output"`
	Neo4jURI string `json:"neo4j_uri,omitempty"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <scan-file>",
		Short: "Build the event graph from a scan document",
		Long: `Build the cytoscape element list for a scan document: one group per
event, one node per call site, one shared node per resolved callback,
and edges classed by signature agreement.

With --neo4j-uri the same graph is also mirrored into Neo4j for ad-hoc
querying.

Example:
  eventlint graph scan.json -o elements.json
  eventlint graph scan.json --neo4j-uri neo4j://localhost:7687 --neo4j-clean`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "elements.json", "output path for the element list")
	cmd.Flags().StringVar(&opts.Neo4jURI, "neo4j-uri", "", "mirror the graph to this Neo4j instance")
	cmd.Flags().StringVar(&opts.Neo4jUser, "neo4j-user", "neo4j", "Neo4j username")
	cmd.Flags().StringVar(&opts.Neo4jPass, "neo4j-pass", "", "Neo4j password (or EVENTLINT_NEO4J_PASS)")
	cmd.Flags().BoolVar(&opts.Neo4jClean, "neo4j-clean", false, "delete previously mirrored graph data first")

	return cmd
}

func runGraph(opts *GraphOptions, docPath string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := loadDocument(docPath)
	if err != nil {
		return outputGraphError(formatter, err)
	}

	elems := graph.Build(doc, func(format string, args ...any) {
		slog.Warn(fmt.Sprintf(format, args...))
	})

	f, err := os.Create(opts.Output)
	if err != nil {
		return outputGraphError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("creating %s: %v", opts.Output, err)})
	}
	if err := graph.Encode(f, elems); err != nil {
		f.Close()
		return outputGraphError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing %s: %v", opts.Output, err)})
	}
	if err := f.Close(); err != nil {
		return outputGraphError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing %s: %v", opts.Output, err)})
	}

	if opts.Neo4jURI != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := mirrorToNeo4j(ctx, opts, doc); err != nil {
			return outputGraphError(formatter, &LoadError{Code: ErrCodeGraphFailed, Message: fmt.Sprintf("mirroring to neo4j: %v", err)})
		}
	}

	summary := GraphSummary{Elements: len(elems), Output: opts.Output, Neo4jURI: opts.Neo4jURI}
	if opts.Format == "json" {
		return formatter.Success(summary)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d graph element(s) to %s\n", summary.Elements, summary.Output)
	if opts.Neo4jURI != "" {
		fmt.Fprintf(out, "Mirrored graph to %s\n", opts.Neo4jURI)
	}
	return nil
}

// mirrorToNeo4j uploads the document's graph. The password falls back to
// EVENTLINT_NEO4J_PASS so it can stay out of shell history.
func mirrorToNeo4j(ctx context.Context, opts *GraphOptions, doc *model.Document) error {
	pass := opts.Neo4jPass
	if pass == "" {
		_ = godotenv.Load()
		pass = os.Getenv("EVENTLINT_NEO4J_PASS")
	}

	loader, err := graph.NewLoader(ctx, graph.LoaderConfig{
		URI:      opts.Neo4jURI,
		Username: opts.Neo4jUser,
		Password: pass,
		Clean:    opts.Neo4jClean,
	})
	if err != nil {
		return err
	}
	defer loader.Close()

	return loader.Load(doc)
}

// outputGraphError reports a graph build failure. All graph failures are
// command-level errors (exit code 2).
func outputGraphError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to build graph", err)
}
