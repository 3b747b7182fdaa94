package ui

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProbeBar shows probe completion during a detection run
type ProbeBar struct {
	bar *progressbar.ProgressBar
}

// NewProbeBar creates a progress bar over a known probe count
func NewProbeBar(total int, description string) *ProbeBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(15),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProbeBar{bar: bar}
}

// Add increments the bar by n completed probes
func (p *ProbeBar) Add(n int) error {
	return p.bar.Add(n)
}

// Finish completes and clears the bar
func (p *ProbeBar) Finish() error {
	if err := p.bar.Finish(); err != nil {
		return err
	}
	return p.bar.Clear()
}
