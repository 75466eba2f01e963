package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/evsys/eventlint/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryEntry is the JSON shape of one recorded scan run.
type HistoryEntry struct {
	ID           string `json:"id"`
	GeneratedAt  string `json:"generated_at"`
	CompDBDir    string `json:"compdb_dir"`
	OutputPath   string `json:"output_path"`
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

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan runs",
		Long: `List scan runs recorded with --db, newest first.

Example:
  eventlint history --db eventlint.db
  eventlint history --db eventlint.db -n 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "history database path (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to list")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(".")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath == "" {
		message := "no history database configured: pass --db or set database in " + configFileName
		_ = formatter.Error(ErrCodeStoreFailed, message, nil)
		return NewExitError(ExitCommandError, message)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing history database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		entries := make([]HistoryEntry, 0, len(runs))
		for _, r := range runs {
			entries = append(entries, HistoryEntry{
				ID:           r.ID,
				GeneratedAt:  r.GeneratedAt,
				CompDBDir:    r.CompDBDir,
				OutputPath:   r.OutputPath,
				UnitsTotal:   r.UnitsTotal,
				UnitsScanned: r.UnitsScanned,
				UnitsSkipped: r.UnitsSkipped,
				UnitsFailed:  r.UnitsFailed,
				Publishers:   r.Publishers,
				Subscribers:  r.Subscribers,
				Registrars:   r.Registrars,
				DirectCalls:  r.DirectCalls,
				DurationMS:   r.Duration.Milliseconds(),
			})
		}
		return formatter.Success(entries)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %s -> %s\n", r.ID, r.GeneratedAt, r.CompDBDir, r.OutputPath)
		fmt.Fprintf(out, "  %d/%d unit(s) scanned, %d skipped, %d failed; %d pub, %d sub, %d reg, %d direct; %s\n",
			r.UnitsScanned, r.UnitsTotal, r.UnitsSkipped, r.UnitsFailed,
			r.Publishers, r.Subscribers, r.Registrars, r.DirectCalls,
			r.Duration.Round(time.Millisecond))
	}
	return nil
}
