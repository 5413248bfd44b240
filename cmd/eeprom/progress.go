package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/moffa90/go-eeprom/programmer"
)

// progressReporter draws one bar per bulk phase. It stays silent when
// output is not a terminal.
type progressReporter struct {
	w       io.Writer
	enabled bool

	bar   *progressbar.ProgressBar
	phase string
}

func newProgressReporter(w io.Writer, enabled bool) *progressReporter {
	return &progressReporter{w: w, enabled: enabled}
}

var phaseDescriptions = map[string]string{
	programmer.PhaseWriting:   "Writing memory",
	programmer.PhaseVerifying: "Verifying data",
	programmer.PhaseReading:   "Reading memory",
}

// Update is the programmer's progress callback.
func (r *progressReporter) Update(p programmer.Progress) {
	if !r.enabled {
		return
	}

	desc, drawn := phaseDescriptions[p.Phase]
	if !drawn {
		// Settling and complete close the running bar.
		r.finish()
		return
	}

	if p.Phase != r.phase || r.bar == nil {
		r.finish()
		r.phase = p.Phase
		r.bar = progressbar.NewOptions(p.TotalChunks,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(desc),
			progressbar.OptionShowCount(),
		)
	}

	if p.CurrentChunk > 0 {
		_ = r.bar.Set(p.CurrentChunk)
	}
}

func (r *progressReporter) finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	fmt.Fprintln(r.w)
	r.bar = nil
	r.phase = ""
}

// Abort drops a bar left open by a failed operation.
func (r *progressReporter) Abort() {
	if r.bar == nil {
		return
	}
	fmt.Fprintln(r.w)
	r.bar = nil
	r.phase = ""
}
