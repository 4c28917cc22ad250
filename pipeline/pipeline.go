// Package pipeline converts raw per-poll motion samples and button-line
// readings into composed input reports: a fractional-carry accumulator for
// the two independently scaled axis domains, a level-debouncer for the
// button mask, and per-poll report assembly.
//
// All state is owned explicitly by the Pipeline value; there are no
// package globals, so the logic is unit-testable without hardware.
package pipeline

import (
	"github.com/orbweaver-fw/orbweaver/hidreport"
	"github.com/orbweaver-fw/orbweaver/sensor"
)

// Config is the pipeline's compile-time-style configuration: fixed for the
// lifetime of the process.
type Config struct {
	Coefficients      Coefficients
	DebounceThreshold int
}

// Pipeline combines the motion accumulator and the button debouncer.
type Pipeline struct {
	acc *Accumulator
	deb *Debouncer
}

// New validates cfg and returns a pipeline with empty state.
func New(cfg Config) (*Pipeline, error) {
	acc, err := NewAccumulator(cfg.Coefficients)
	if err != nil {
		return nil, err
	}
	deb, err := NewDebouncer(cfg.DebounceThreshold)
	if err != nil {
		return nil, err
	}
	return &Pipeline{acc: acc, deb: deb}, nil
}

// Tick processes one poll: the motion sample is routed into the pointer or
// scroll domain, scaled deltas are extracted, and the raw button mask is
// debounced. It returns the composed report and whether any emitted delta
// is nonzero this poll. An invalid (no-activity) sample carries zero
// deltas and is indistinguishable from genuine zero motion here.
func (p *Pipeline) Tick(s sensor.Sample, rawButtons uint8, scrollMode bool) (hidreport.Report, bool) {
	p.acc.Add(s.DX, s.DY, scrollMode)
	d, motion := p.acc.Extract()
	buttons := p.deb.Sample(rawButtons)
	return hidreport.Report{
		Buttons: buttons,
		X:       d.X,
		Y:       d.Y,
		Pan:     d.Pan,
		Wheel:   d.Wheel,
	}, motion
}

// Buttons returns the currently committed button mask.
func (p *Pipeline) Buttons() uint8 { return p.deb.Committed() }
