// Package progress reports long-running work to the terminal. The default
// reporter renders a progress bar on stderr; Nop silences everything for
// tests and non-interactive use.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress updates from long-running operations. All
// methods are safe for concurrent use.
type Reporter interface {
	// Start begins a new phase with the given total step count.
	Start(total int64, description string)
	// Describe updates the phase description without resetting progress.
	Describe(description string)
	// Add advances the bar by n completed steps.
	Add(n int)
	// AddTotal adjusts the expected total, e.g. when steps are skipped.
	AddTotal(delta int64)
	// Warnf prints a warning without disturbing the bar.
	Warnf(format string, args ...any)
	// Finish completes the current phase and clears the bar.
	Finish()
}

// Bar is a Reporter drawing a terminal progress bar.
type Bar struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *progressbar.ProgressBar
	total int64
}

// NewBar creates a Bar writing to out.
func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

func (b *Bar) Start(total int64, description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (b *Bar) Describe(description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.Describe(description)
	}
}

func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

func (b *Bar) AddTotal(delta int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.total += delta
		b.bar.ChangeMax64(b.total)
	}
}

func (b *Bar) Warnf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Clear()
	}
	fmt.Fprintf(b.out, "warning: "+format+"\n", args...)
	if b.bar != nil {
		_ = b.bar.RenderBlank()
	}
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}

// Nop is a Reporter that discards all updates.
type Nop struct{}

func (Nop) Start(int64, string)  {}
func (Nop) Describe(string)      {}
func (Nop) Add(int)              {}
func (Nop) AddTotal(int64)       {}
func (Nop) Warnf(string, ...any) {}
func (Nop) Finish()              {}
