package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/evsys/eventlint/internal/compdb"
	"github.com/evsys/eventlint/internal/extract"
	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/model"
)

const (
	// resultBuffer bounds each per-kind channel. Workers block briefly when
	// a burst outruns the poll loop; the next drain tick frees them.
	resultBuffer = 1024

	pollInterval = 250 * time.Millisecond
)

// Options configures one scan run.
type Options struct {
	// CompDBDir is the directory holding compile_commands.json.
	CompDBDir string
	// ProjectRoot is a path fragment a node's file must contain; see
	// extract.Options.
	ProjectRoot string
	// Filter narrows which database entries are scanned.
	Filter compdb.Filter
	// Match selects the event API types.
	Match extract.MatchConfig
	// Parser produces trees, normally a frontend.DumpParser.
	Parser frontend.Parser
	// Workers is the pool width. Zero means DefaultWorkers().
	Workers int
	// Progress receives completion counts. Nil discards them.
	Progress ProgressReporter
	// Log defaults to slog.Default().
	Log *slog.Logger
}

// DefaultWorkers is twice the CPU count, floored at two: workers spend
// most of their time waiting on a dumper child process.
func DefaultWorkers() int {
	n := 2 * runtime.NumCPU()
	if n < 2 {
		n = 2
	}
	return n
}

// Stats summarizes one scan run.
type Stats struct {
	UnitsTotal   int
	UnitsScanned int
	UnitsSkipped int
	UnitsFailed  int
	Publishers   int
	Subscribers  int
	Registrars   int
	DirectCalls  int
	Duration     time.Duration
}

type unit struct {
	file string
	argv []string
}

// Run scans every eligible unit in the compilation database and returns
// the aggregated document. The document is complete when Run returns: all
// workers have been joined and all channels drained.
func Run(ctx context.Context, opts Options) (*model.Document, Stats, error) {
	if opts.Parser == nil {
		return nil, Stats{}, errors.New("scan: no parser configured")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	cmds, err := compdb.Load(opts.CompDBDir)
	if err != nil {
		return nil, Stats{}, err
	}

	var units []unit
	skipped := 0
	for _, c := range cmds {
		file := c.AbsFile()
		if ok, reason := opts.Filter.Eligible(file); !ok {
			log.Debug("skipping unit", "file", file, "reason", reason)
			skipped++
			continue
		}
		if _, err := os.Stat(file); err != nil {
			log.Warn("skipping unit, file not readable", "file", file, "error", err)
			skipped++
			continue
		}
		units = append(units, unit{file: file, argv: c.Argv()})
	}

	start := time.Now()
	total := len(units)
	progress.Start(total)

	pubs := make(chan model.Publisher, resultBuffer)
	subs := make(chan model.Subscriber, resultBuffer)
	regs := make(chan model.Registrar, resultBuffer)
	calls := make(chan model.DirectCall, resultBuffer)
	done := make(chan string, total)

	doc := model.NewDocument()
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)

	launch := func(u unit) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Completion is signaled on every exit path, after all record
			// sends; a dead unit must never stall the poll loop.
			defer func() { done <- u.file }()

			root, err := opts.Parser.Parse(ctx, u.file, u.argv)
			if err != nil {
				failed.Add(1)
				log.Warn("translation unit failed", "file", u.file, "error", err)
				return
			}
			res := extract.WalkUnit(root, extract.Options{
				ProjectRoot: opts.ProjectRoot,
				Match:       opts.Match,
			})
			for _, p := range res.Publishers {
				pubs <- p
			}
			for _, s := range res.Subscribers {
				subs <- s
			}
			for _, r := range res.Registrars {
				regs <- r
			}
			for _, d := range res.DirectCalls {
				calls <- d
			}
		}()
	}

	// Fixed kind order; aggregation is append-only, so the document's
	// first-seen event order is set here and nowhere else.
	drain := func() {
		drainChannel(pubs, &doc.Publishers)
		drainChannel(subs, &doc.Subscribers)
		drainChannel(regs, &doc.Registrars)
		drainChannel(calls, &doc.DirectCalls)
	}

	next, launched, completed, inBatch := 0, 0, 0, 0
	for completed < total {
		for inBatch < workers && next < total {
			launch(units[next])
			next++
			launched++
			inBatch++
		}
		time.Sleep(pollInterval)
		completed += drainCompleted(done)
		drain()
		progress.Set(completed)
		if completed >= launched {
			inBatch = 0
		}
	}

	wg.Wait()
	drain()
	progress.Finish()

	doc.RunID = uuid.Must(uuid.NewV7()).String()
	doc.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	doc.DropInvalid(func(format string, args ...any) {
		log.Warn(fmt.Sprintf(format, args...))
	})

	stats := Stats{
		UnitsTotal:   len(cmds),
		UnitsScanned: total - int(failed.Load()),
		UnitsSkipped: skipped,
		UnitsFailed:  int(failed.Load()),
		Publishers:   len(doc.Publishers),
		Subscribers:  len(doc.Subscribers),
		Registrars:   len(doc.Registrars),
		DirectCalls:  len(doc.DirectCalls),
		Duration:     time.Since(start),
	}
	return doc, stats, nil
}

func drainChannel[T any](ch chan T, sink *[]T) {
	for {
		select {
		case v := <-ch:
			*sink = append(*sink, v)
		default:
			return
		}
	}
}

func drainCompleted(done chan string) int {
	n := 0
	for {
		select {
		case <-done:
			n++
		default:
			return n
		}
	}
}
