package check

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/golang-lru/v2"

	"github.com/evsys/eventlint/internal/model"
	"github.com/evsys/eventlint/internal/vcs"
)

var (
	headerColor  = color.New(color.FgRed, color.Bold)
	passColor    = color.New(color.FgGreen, color.Bold)
	eventColor   = color.New(color.FgHiYellow)
	sigColor     = color.New(color.FgMagenta)
	pathColor    = color.New(color.FgCyan)
	lineColor    = color.New(color.Bold)
	commentColor = color.New(color.FgGreen, color.Faint)
)

// sourceCacheSize bounds how many files the decorator keeps split into
// lines. Reports rarely touch more files than this in one run.
const sourceCacheSize = 64

// SourceDecorator annotates a report site with the line of code behind
// it, either straight from the file or through git blame when a
// repository root is known. Decoration is best effort; a site it cannot
// read is simply left bare.
type SourceDecorator struct {
	cache     *lru.Cache[string, []string]
	blameRoot string
	readFile  func(string) ([]byte, error)
}

// NewSourceDecorator returns a decorator reading files from disk.
// blameRoot may be empty to disable blame annotation.
func NewSourceDecorator(blameRoot string) *SourceDecorator {
	cache, _ := lru.New[string, []string](sourceCacheSize)
	return &SourceDecorator{
		cache:     cache,
		blameRoot: blameRoot,
		readFile:  os.ReadFile,
	}
}

// Line returns the annotated source line for loc, or "" when the file or
// line cannot be produced.
func (d *SourceDecorator) Line(loc model.SourceLocation) string {
	if loc.File == "" || loc.Line <= 0 {
		return ""
	}
	if d.blameRoot != "" {
		if out, err := vcs.BlameLine(d.blameRoot, loc.File, loc.Line); err == nil {
			return out
		}
	}
	lines, ok := d.cache.Get(loc.File)
	if !ok {
		data, err := d.readFile(loc.File)
		if err != nil {
			return ""
		}
		lines = strings.Split(string(data), "\n")
		d.cache.Add(loc.File, lines)
	}
	if loc.Line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[loc.Line-1])
}

// ReportWriter renders an analysis result as an indented text report.
type ReportWriter struct {
	w   *bufio.Writer
	dec *SourceDecorator
}

// NewReportWriter writes the report to w. dec may be nil to skip source
// annotation.
func NewReportWriter(w io.Writer, dec *SourceDecorator) *ReportWriter {
	return &ReportWriter{w: bufio.NewWriter(w), dec: dec}
}

// Write renders every mismatched event. Nothing is printed for a clean
// result.
func (rw *ReportWriter) Write(res Result) error {
	for _, ev := range res.Mismatched {
		rw.writeEvent(ev)
	}
	return rw.w.Flush()
}

func (rw *ReportWriter) writeEvent(ev EventReport) {
	fmt.Fprintf(rw.w, "\n%s %s\n",
		headerColor.Sprint("Event signature mismatch for:"),
		eventColor.Sprint(ev.Event))
	for _, g := range ev.Groups {
		fmt.Fprintf(rw.w, "\t%s  %d usage(s):\n",
			sigColor.Sprintf("<%s>", g.Signature), len(g.Members))
		for _, m := range g.Members {
			rw.writeMember(m)
		}
	}
}

// WriteSummary prints the final verdict line.
func (rw *ReportWriter) WriteSummary(res Result) error {
	if res.Failed() {
		fmt.Fprintf(rw.w, "\n%s\n", headerColor.Sprint("Event validation FAILED"))
	} else {
		fmt.Fprintf(rw.w, "\n%s\n", passColor.Sprint("Event validation PASSED"))
	}
	return rw.w.Flush()
}

func (rw *ReportWriter) writeMember(rec model.CallRecord) {
	site := rec.Site()
	fmt.Fprintf(rw.w, "\t\t%s() called at %s:%s\n",
		rec.Kind(), pathColor.Sprint(site.File), lineColor.Sprint(site.Line))
	if c := rec.AttachedComment(); c != "" {
		for _, line := range strings.Split(c, "\n") {
			fmt.Fprintf(rw.w, "\t\t\t%s\n", commentColor.Sprint(line))
		}
	}
	if rw.dec != nil {
		if src := rw.dec.Line(site); src != "" {
			fmt.Fprintf(rw.w, "\t\t\t%s\n", src)
		}
	}
}
