// Package progress wraps terminal progress reporting for long-running
// analysis runs.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker reports per-file progress on stderr. A nil Tracker is valid and
// silent, so callers can pass one through unconditionally.
type Tracker struct {
	bar *progressbar.ProgressBar
}

// NewTracker creates a progress tracker for total items. When enabled is
// false the returned Tracker discards everything.
func NewTracker(total int, description string, enabled bool) *Tracker {
	if !enabled || total <= 0 {
		return &Tracker{}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Tracker{bar: bar}
}

// Tick records one completed item.
func (t *Tracker) Tick() {
	if t == nil || t.bar == nil {
		return
	}
	_ = t.bar.Add(1)
}

// Finish completes and clears the bar.
func (t *Tracker) Finish() {
	if t == nil || t.bar == nil {
		return
	}
	_ = t.bar.Finish()
}
