package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"vmx/internal/domain"
)

// ProgressListener renders a progress bar from dispatcher events
type ProgressListener struct {
	bar     *progressbar.ProgressBar
	passed  int
	failed  int
	ignored int
	failing map[string]bool
}

// NewProgressListener creates a progress bar for count descriptors writing to out (stderr when nil)
func NewProgressListener(count int, out io.Writer) *ProgressListener {
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressListener{bar: bar, failing: make(map[string]bool)}
}

func describe(passed, failed, ignored int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d", failed) +
		" | " +
		color.YellowString("ignored: %d]", ignored)
}

// Started is a no-op; the bar advances on terminal events only.
func (p *ProgressListener) Started(domain.Descriptor) {}

func (p *ProgressListener) Failed(d domain.Descriptor, _ error) {
	p.failing[d.Class+"\x00"+d.DisplayName] = true
}

func (p *ProgressListener) Finished(d domain.Descriptor) {
	k := d.Class + "\x00" + d.DisplayName
	if p.failing[k] {
		delete(p.failing, k)
		p.failed++
	} else {
		p.passed++
	}
	p.update()
}

func (p *ProgressListener) Ignored(domain.Descriptor) {
	p.ignored++
	p.update()
}

func (p *ProgressListener) update() {
	_ = p.bar.Set(p.passed + p.failed + p.ignored)
	p.bar.Describe(describe(p.passed, p.failed, p.ignored))
}

// Counts returns the passed, failed and ignored totals seen so far.
func (p *ProgressListener) Counts() (passed, failed, ignored int) {
	return p.passed, p.failed, p.ignored
}

// Finish completes the progress bar
func (p *ProgressListener) Finish() {
	_ = p.bar.Finish()
}
