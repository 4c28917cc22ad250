package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccumulatorRejectsBadCoefficients(t *testing.T) {
	tests := []struct {
		name  string
		coeff Coefficients
	}{
		{"zero pointer", Coefficients{PointerX: 0, PointerY: 1, ScrollX: 1, ScrollY: 1}},
		{"zero scroll", Coefficients{PointerX: 1, PointerY: 1, ScrollX: 1, ScrollY: 0}},
		{"nan", Coefficients{PointerX: math.NaN(), PointerY: 1, ScrollX: 1, ScrollY: 1}},
		{"inf", Coefficients{PointerX: 1, PointerY: math.Inf(1), ScrollX: 1, ScrollY: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAccumulator(tt.coeff)
			assert.Error(t, err)
		})
	}
}

func TestSignInversion(t *testing.T) {
	a, err := NewAccumulator(Coefficients{PointerX: 1, PointerY: 1, ScrollX: 1, ScrollY: 1})
	require.NoError(t, err)

	a.Add(0, 10, false)
	d, motion := a.Extract()
	assert.True(t, motion)
	assert.Equal(t, int16(0), d.X)
	assert.Equal(t, int16(-10), d.Y, "pointer Y must be inverted")
}

func TestZeroPollsAreIdempotent(t *testing.T) {
	a, err := NewAccumulator(Coefficients{PointerX: 0.012, PointerY: 0.012, ScrollX: 0.35, ScrollY: 0.35})
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		a.Add(0, 0, false)
		d, motion := a.Extract()
		require.False(t, motion)
		require.Equal(t, Deltas{}, d)
	}
	assert.Zero(t, a.pointer[0])
	assert.Zero(t, a.pointer[1])
	assert.Zero(t, a.scroll[0])
	assert.Zero(t, a.scroll[1])
}

func TestSubThresholdMotionIsRetained(t *testing.T) {
	// Three polls of (3,0) at coefficient 0.012 emit nothing but must
	// accumulate; a fourth still emits nothing with the scaled residual at
	// 0.144.
	a, err := NewAccumulator(Coefficients{PointerX: 0.012, PointerY: 0.012, ScrollX: 0.35, ScrollY: 0.35})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		a.Add(3, 0, false)
		d, motion := a.Extract()
		require.False(t, motion, "poll %d", i)
		require.Equal(t, Deltas{}, d)
	}
	assert.InDelta(t, 0.108, a.pointer[0]*0.012, 1e-12)

	a.Add(3, 0, false)
	d, motion := a.Extract()
	assert.False(t, motion)
	assert.Equal(t, Deltas{}, d)
	assert.InDelta(t, 0.144, a.pointer[0]*0.012, 1e-12)
}

func TestResidualConservation(t *testing.T) {
	// For every axis: the sum of emitted deltas plus the scaled final
	// residual must equal the scaled sum of raw input (sign-flipped for
	// pointer Y). No motion lost, none invented.
	coeff := Coefficients{PointerX: 0.012, PointerY: 0.017, ScrollX: 0.35, ScrollY: 0.4}
	a, err := NewAccumulator(coeff)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	var rawPX, rawPY, rawSX, rawSY float64
	var emitted [4]float64

	for i := 0; i < 5000; i++ {
		dx := int16(rng.Intn(257) - 128)
		dy := int16(rng.Intn(257) - 128)
		scroll := rng.Intn(4) == 0
		a.Add(dx, dy, scroll)
		if scroll {
			rawSX += float64(dx)
			rawSY += float64(dy)
		} else {
			rawPX += float64(dx)
			rawPY += float64(dy)
		}

		d, _ := a.Extract()
		emitted[0] += float64(d.X)
		emitted[1] += float64(d.Y)
		emitted[2] += float64(d.Pan)
		emitted[3] += float64(d.Wheel)

		// Bounded residual: after every extraction the scaled residual is
		// strictly below one output unit.
		require.Less(t, math.Abs(a.pointer[0]*coeff.PointerX), 1.0)
		require.Less(t, math.Abs(a.pointer[1]*coeff.PointerY), 1.0)
		require.Less(t, math.Abs(a.scroll[0]*coeff.ScrollX), 1.0)
		require.Less(t, math.Abs(a.scroll[1]*coeff.ScrollY), 1.0)
	}

	assert.InDelta(t, coeff.PointerX*rawPX, emitted[0]+coeff.PointerX*a.pointer[0], 1e-6)
	assert.InDelta(t, coeff.PointerY*-rawPY, emitted[1]-coeff.PointerY*a.pointer[1], 1e-6)
	assert.InDelta(t, coeff.ScrollX*rawSX, emitted[2]+coeff.ScrollX*a.scroll[0], 1e-6)
	assert.InDelta(t, coeff.ScrollY*rawSY, emitted[3]+coeff.ScrollY*a.scroll[1], 1e-6)
}

func TestScrollRouting(t *testing.T) {
	a, err := NewAccumulator(Coefficients{PointerX: 1, PointerY: 1, ScrollX: 1, ScrollY: 1})
	require.NoError(t, err)

	a.Add(4, -7, true)
	d, motion := a.Extract()
	assert.True(t, motion)
	assert.Equal(t, Deltas{Pan: 4, Wheel: -7}, d, "scroll domain is not sign-inverted")
}
