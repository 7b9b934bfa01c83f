package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// FetchProgress shows how many resources have arrived. It is safe to call
// Done from several goroutines.
type FetchProgress struct {
	bar    *progressbar.ProgressBar
	failed []string
	mu     sync.Mutex
}

// NewFetchProgress draws a bar of total steps on w. A disabled progress
// only records failures.
func NewFetchProgress(w io.Writer, total int, enabled bool) *FetchProgress {
	p := &FetchProgress{}
	if !enabled {
		return p
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Fetching records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprint(w, "\r"); err != nil {
				slog.Debug("failed to clear progress bar", "error", err)
			}
		}),
	)
	return p
}

// Done advances the bar for one named step.
func (p *FetchProgress) Done(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed = append(p.failed, name)
	}
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Fetched %s[reset]", name))
	if addErr := p.bar.Add(1); addErr != nil {
		slog.Debug("failed to update progress bar", "error", addErr)
	}
}

// Failed lists the steps reported with an error, in arrival order.
func (p *FetchProgress) Failed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.failed...)
}

// Finish completes the bar.
func (p *FetchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
