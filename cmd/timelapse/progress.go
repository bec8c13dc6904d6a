package main

import (
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// progress renders encode progress as a bar on interactive terminals.
// On other outputs it does nothing so log files stay clean.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer, enabled bool) *progress {
	if !enabled || !isTerminal(w) {
		return &progress{}
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(l10n.T("Encoding")),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	return &progress{bar: bar}
}

// Update implements pipeline.ProgressFunc.
func (p *progress) Update(percent float64) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(int(percent))
}

// Finish clears the bar.
func (p *progress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
