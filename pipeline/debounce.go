package pipeline

import "fmt"

// Debouncer is the level-debounce state machine for the button lines. A
// raw sample that differs from the committed mask starts a debounce; the
// change commits only after the same raw mask is observed for more than
// the threshold of consecutive polls. Any mismatch during debounce
// restarts the counter against the newly observed value, not the old
// committed one, so a rapidly bouncing line can never be ignored
// indefinitely.
type Debouncer struct {
	threshold int
	committed uint8
	candidate uint8
	count     int
}

// NewDebouncer returns a debouncer requiring more than threshold
// consecutive matching polls before committing a change.
func NewDebouncer(threshold int) (*Debouncer, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("pipeline: debounce threshold %d must be at least 1", threshold)
	}
	return &Debouncer{threshold: threshold}, nil
}

// Sample feeds one poll's raw button mask through the state machine and
// returns the mask the current report should carry. Until a debounce
// settles, that is the previously committed mask.
func (d *Debouncer) Sample(raw uint8) uint8 {
	if d.count == 0 {
		if raw != d.committed {
			d.candidate = raw
			d.count = 1
		}
		return d.committed
	}

	if raw == d.candidate {
		d.count++
		if d.count > d.threshold {
			d.committed = d.candidate
			d.count = 0
		}
	} else {
		d.candidate = raw
		d.count = 1
	}
	return d.committed
}

// Committed returns the currently committed mask without advancing the
// state machine.
func (d *Debouncer) Committed() uint8 { return d.committed }
