package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/evsys/eventlint/internal/compdb"
	"github.com/evsys/eventlint/internal/extract"
	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/model"
	"github.com/evsys/eventlint/internal/scan"
	"github.com/evsys/eventlint/internal/store"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Output      string
	ProjectRoot string
	Subset      string
	Frontend    string
	Jobs        int
	Database    string
}

// ScanSummary is the JSON payload for a completed scan.
type ScanSummary struct {
	RunID        string `json:"run_id"`
	Output       string `json:"output"`
	UnitsTotal   int    `json:"units_total"`
	UnitsScanned int    `json:"units_scanned"`
	UnitsSkipped int    `json:"units_skipped"`
	UnitsFailed  int    `json:"units_failed"`
	Publishers   int    `json:"publishers"`
	Subscribers  int    `json:"subscribers"`
	Registrars   int    `json:"registrars"`
	DirectCalls  int    `json:"directcalls"`
	DurationMS   int64  `json:"duration_ms"`
}

var (
	scanBannerColor = color.New(color.FgGreen, color.Bold)
	scanPathColor   = color.New(color.FgCyan)
)

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <compdb-dir>",
		Short: "Scan a compilation database for event API calls",
		Long: `Scan every translation unit listed in compile_commands.json for
publish, subscribe and registerEvent calls and write the aggregated
records as a scan document.

Each unit is parsed by an external AST dumper. A unit that fails to
parse is reported and skipped without aborting the run.

Example:
  eventlint scan ./build
  eventlint scan ./build -o scan.json --subset "game.cpp;hud.cpp" -j 8`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "scan.json", "output path for the scan document")
	cmd.Flags().StringVar(&opts.ProjectRoot, "project-root", "", "path fragment a file must contain to be recorded")
	cmd.Flags().StringVar(&opts.Subset, "subset", "", "semicolon-separated source files to scan, all others skipped")
	cmd.Flags().StringVar(&opts.Frontend, "frontend", "", "AST dumper command (default from config)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "parallel dumper processes (default 2x CPUs)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this history database")

	return cmd
}

func runScan(opts *ScanOptions, compdbDir string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := LoadConfig(".")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Frontend != "" {
		cfg.Frontend = opts.Frontend
	}
	if opts.ProjectRoot != "" {
		cfg.ProjectRoot = opts.ProjectRoot
	}
	if opts.Jobs > 0 {
		cfg.Workers = opts.Jobs
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	out := cmd.OutOrStdout()
	if opts.Format != "json" {
		fmt.Fprintf(out, "%s %s\n",
			scanBannerColor.Sprint("Processing compilation database in"),
			scanPathColor.Sprint(compdbDir))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The progress bar draws on stderr and only in text mode; JSON output
	// must stay a single parseable object.
	var progress scan.ProgressReporter
	if opts.Format != "json" {
		progress = scan.NewBarProgress(cmd.ErrOrStderr())
	}

	doc, stats, err := scan.Run(ctx, scan.Options{
		CompDBDir:   compdbDir,
		ProjectRoot: cfg.ProjectRoot,
		Filter:      compdb.Filter{Excludes: cfg.Excludes, Subset: splitSubset(opts.Subset)},
		Match:       extract.MatchConfig{SystemType: cfg.SystemType, CollectionType: cfg.CollectionType},
		Parser:      &frontend.DumpParser{Command: cfg.Frontend},
		Workers:     cfg.Workers,
		Progress:    progress,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "scan failed", err)
	}

	data, err := doc.Encode()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode scan document", err)
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write scan document", err)
	}

	if cfg.Database != "" {
		if err := recordRun(ctx, cfg.Database, compdbDir, opts.Output, doc, stats); err != nil {
			return WrapExitError(ExitCommandError, "failed to record scan run", err)
		}
	}

	summary := ScanSummary{
		RunID:        doc.RunID,
		Output:       opts.Output,
		UnitsTotal:   stats.UnitsTotal,
		UnitsScanned: stats.UnitsScanned,
		UnitsSkipped: stats.UnitsSkipped,
		UnitsFailed:  stats.UnitsFailed,
		Publishers:   stats.Publishers,
		Subscribers:  stats.Subscribers,
		Registrars:   stats.Registrars,
		DirectCalls:  stats.DirectCalls,
		DurationMS:   stats.Duration.Milliseconds(),
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		}
		return formatter.Success(summary)
	}

	fmt.Fprintf(out, "Scanned %d of %d unit(s), %d skipped, %d failed in %s\n",
		summary.UnitsScanned, summary.UnitsTotal, summary.UnitsSkipped, summary.UnitsFailed,
		stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Found %d publish, %d subscribe, %d registerEvent and %d direct call(s)\n",
		summary.Publishers, summary.Subscribers, summary.Registrars, summary.DirectCalls)
	fmt.Fprintf(out, "Wrote scan document to %s\n", opts.Output)
	return nil
}

// splitSubset parses the --subset flag. Entries are semicolon-separated;
// empty entries are dropped.
func splitSubset(s string) []string {
	var subset []string
	for _, f := range strings.Split(s, ";") {
		if f = strings.TrimSpace(f); f != "" {
			subset = append(subset, f)
		}
	}
	return subset
}

// recordRun appends the completed scan to the history database.
func recordRun(ctx context.Context, dbPath, compdbDir, output string, doc *model.Document, stats scan.Stats) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing history database", "error", closeErr)
		}
	}()

	return st.RecordRun(ctx, store.RunRecord{
		ID:           doc.RunID,
		GeneratedAt:  doc.GeneratedAt,
		CompDBDir:    compdbDir,
		OutputPath:   output,
		UnitsTotal:   stats.UnitsTotal,
		UnitsScanned: stats.UnitsScanned,
		UnitsSkipped: stats.UnitsSkipped,
		UnitsFailed:  stats.UnitsFailed,
		Publishers:   stats.Publishers,
		Subscribers:  stats.Subscribers,
		Registrars:   stats.Registrars,
		DirectCalls:  stats.DirectCalls,
		Duration:     stats.Duration,
	})
}
