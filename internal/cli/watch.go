package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/evsys/eventlint/internal/check"
	"github.com/evsys/eventlint/internal/compdb"
	"github.com/evsys/eventlint/internal/extract"
	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/scan"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Output      string
	ProjectRoot string
	Frontend    string
	Jobs        int
	Debounce    time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <compdb-dir> [src-dir]",
		Short: "Re-scan and re-check on source changes",
		Long: `Run a scan and check once, then watch the source tree and repeat after
every change to a C or C++ file or to compile_commands.json. Changes are
debounced so a save burst triggers one re-scan.

The source tree defaults to the current directory. Reports go to stderr;
stdout stays quiet.

Example:
  eventlint watch ./build
  eventlint watch ./build ./src --debounce 1s`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			watchDir := "."
			if len(args) > 1 {
				watchDir = args[1]
			}
			return runWatch(opts, args[0], watchDir, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "scan.json", "output path for the scan document")
	cmd.Flags().StringVar(&opts.ProjectRoot, "project-root", "", "path fragment a file must contain to be recorded")
	cmd.Flags().StringVar(&opts.Frontend, "frontend", "", "AST dumper command (default from config)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "parallel dumper processes (default 2x CPUs)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 300*time.Millisecond, "delay between a change and the re-scan")

	return cmd
}

func runWatch(opts *WatchOptions, compdbDir, watchDir string, cmd *cobra.Command) error {
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

	scanOpts := scan.Options{
		CompDBDir:   compdbDir,
		ProjectRoot: cfg.ProjectRoot,
		Filter:      compdb.Filter{Excludes: cfg.Excludes},
		Match:       extract.MatchConfig{SystemType: cfg.SystemType, CollectionType: cfg.CollectionType},
		Parser:      &frontend.DumpParser{Command: cfg.Frontend},
		Workers:     cfg.Workers,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create watcher", err)
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, watchDir); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch "+watchDir, err)
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	errW := cmd.ErrOrStderr()
	runOnce := func() {
		doc, stats, err := scan.Run(ctx, scanOpts)
		if err != nil {
			slog.Error("scan failed", "error", err)
			return
		}
		data, err := doc.Encode()
		if err != nil {
			slog.Error("failed to encode scan document", "error", err)
			return
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			slog.Error("failed to write scan document", "error", err)
			return
		}

		res := check.Analyze(doc)
		fmt.Fprintf(errW, "\n[%s] checked %d event(s) across %d unit(s)\n",
			time.Now().Format("15:04:05"), res.Events, stats.UnitsScanned)
		rw := check.NewReportWriter(errW, check.NewSourceDecorator(""))
		if err := rw.Write(res); err != nil {
			slog.Error("failed to write report", "error", err)
			return
		}
		if err := rw.WriteSummary(res); err != nil {
			slog.Error("failed to write report", "error", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Watching", watchDir, "for changes. Press Ctrl-C to stop.")
	runOnce()

	rescan := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be added before anything inside them
			// changes; fsnotify watches are not recursive.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addWatchRecursive(watcher, ev.Name); err != nil {
						slog.Warn("failed to watch new directory", "dir", ev.Name, "error", err)
					}
					continue
				}
			}
			if !watchedFile(ev.Name, opts.Output) {
				continue
			}
			slog.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(opts.Debounce, func() {
				select {
				case rescan <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-rescan:
			runOnce()
		}
	}
}

// addWatchRecursive registers dir and every subdirectory with the watcher.
// Hidden directories are skipped.
func addWatchRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchedFile reports whether a change to name should trigger a re-scan.
// The scan output itself is ignored; writing it must not retrigger.
func watchedFile(name, output string) bool {
	base := filepath.Base(name)
	if base == filepath.Base(output) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp", ".hxx", ".inl":
		return true
	}
	return base == "compile_commands.json"
}
