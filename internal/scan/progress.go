package scan

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter receives scan progress. Set carries the completed-unit
// count, not an increment, and may repeat a value across polls.
type ProgressReporter interface {
	Start(total int)
	Set(completed int)
	Finish()
}

// NopProgress discards progress.
type NopProgress struct{}

func (NopProgress) Start(int) {}
func (NopProgress) Set(int)   {}
func (NopProgress) Finish()   {}

// BarProgress renders a terminal progress bar.
type BarProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{w: w}
}

func (b *BarProgress) Start(total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)
}

func (b *BarProgress) Set(completed int) {
	if b.bar != nil {
		_ = b.bar.Set(completed)
	}
}

func (b *BarProgress) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(b.w)
	}
}
