package pipeline

import (
	"errors"
	"math"
)

// Coefficients holds the fixed per-axis sensitivity factors that convert
// sensor counts into report units. All four must be nonzero; they are
// typically sub-unity, which is why fractional remainders must be carried
// between polls instead of rounded away.
type Coefficients struct {
	PointerX, PointerY float64
	ScrollX, ScrollY   float64
}

// Deltas is one poll's emitted motion, in report units.
type Deltas struct {
	X, Y       int16 // pointer
	Pan, Wheel int16 // scroll: horizontal, vertical
}

// Accumulator carries un-emitted motion across polls for the two axis
// domains. Residuals are kept in original sensor-count units so the
// accumulation is exact regardless of polling rate: after every extraction
// the residual scaled by its coefficient has magnitude below one report
// unit, and nothing is ever dropped.
type Accumulator struct {
	coeff   Coefficients
	pointer [2]float64 // residuals in sensor counts
	scroll  [2]float64
}

// NewAccumulator validates the coefficients and returns an empty
// accumulator.
func NewAccumulator(c Coefficients) (*Accumulator, error) {
	for _, v := range []float64{c.PointerX, c.PointerY, c.ScrollX, c.ScrollY} {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("pipeline: sensitivity coefficients must be finite and nonzero")
		}
	}
	return &Accumulator{coeff: c}, nil
}

// Add routes one raw sample into the pointer domain, or into the scroll
// domain when scroll mode is held for this poll.
func (a *Accumulator) Add(dx, dy int16, scroll bool) {
	if scroll {
		a.scroll[0] += float64(dx)
		a.scroll[1] += float64(dy)
		return
	}
	a.pointer[0] += float64(dx)
	a.pointer[1] += float64(dy)
}

// Extract scales each domain's residual, emits the integer parts as this
// poll's deltas and stores the fractional remainders back in sensor-count
// units. The second return value is true when any emitted delta is
// nonzero.
//
// Pointer Y is negated around the scale step: the sensor is mounted
// upside-down relative to the report's Y convention, and the stored
// residual must be negated back so it keeps the as-sampled sign.
func (a *Accumulator) Extract() (Deltas, bool) {
	var d Deltas

	x := a.coeff.PointerX * a.pointer[0]
	y := a.coeff.PointerY * -a.pointer[1]
	ix, fx := math.Modf(x)
	iy, fy := math.Modf(y)
	d.X, d.Y = int16(ix), int16(iy)
	a.pointer[0] = fx / a.coeff.PointerX
	a.pointer[1] = -fy / a.coeff.PointerY

	p := a.coeff.ScrollX * a.scroll[0]
	w := a.coeff.ScrollY * a.scroll[1]
	ip, fp := math.Modf(p)
	iw, fw := math.Modf(w)
	d.Pan, d.Wheel = int16(ip), int16(iw)
	a.scroll[0] = fp / a.coeff.ScrollX
	a.scroll[1] = fw / a.coeff.ScrollY

	return d, d.X != 0 || d.Y != 0 || d.Pan != 0 || d.Wheel != 0
}
