package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbweaver-fw/orbweaver/hidreport"
	"github.com/orbweaver-fw/orbweaver/pipeline"
	"github.com/orbweaver-fw/orbweaver/sensor"
)

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Config{
		Coefficients:      pipeline.Coefficients{PointerX: 1, PointerY: 1, ScrollX: 1, ScrollY: 1},
		DebounceThreshold: 2,
	})
	require.NoError(t, err)
	return p
}

func TestTickAssemblesReport(t *testing.T) {
	p := newPipeline(t)

	rep, motion := p.Tick(sensor.Sample{DX: 5, DY: 3, Motion: true}, 0, false)
	assert.True(t, motion)
	assert.Equal(t, hidreport.Report{X: 5, Y: -3}, rep)
}

func TestTickScrollMode(t *testing.T) {
	p := newPipeline(t)

	rep, motion := p.Tick(sensor.Sample{DX: 2, DY: -4, Motion: true}, 0, true)
	assert.True(t, motion)
	assert.Equal(t, hidreport.Report{Pan: 2, Wheel: -4}, rep)
}

func TestTickInvalidSampleIsZeroDelta(t *testing.T) {
	p := newPipeline(t)

	rep, motion := p.Tick(sensor.Sample{}, 0, false)
	assert.False(t, motion)
	assert.Equal(t, hidreport.Report{}, rep)
}

func TestTickButtonsLagDebounce(t *testing.T) {
	p := newPipeline(t)

	rep, _ := p.Tick(sensor.Sample{}, 0b0001, false)
	assert.Equal(t, uint8(0), rep.Buttons, "first poll of a change must not commit")
	rep, _ = p.Tick(sensor.Sample{}, 0b0001, false)
	assert.Equal(t, uint8(0), rep.Buttons)
	rep, _ = p.Tick(sensor.Sample{}, 0b0001, false)
	assert.Equal(t, uint8(0b0001), rep.Buttons)
	assert.Equal(t, uint8(0b0001), p.Buttons())
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  pipeline.Config
	}{
		{"zero coefficient", pipeline.Config{
			Coefficients:      pipeline.Coefficients{PointerX: 0, PointerY: 1, ScrollX: 1, ScrollY: 1},
			DebounceThreshold: 2,
		}},
		{"zero threshold", pipeline.Config{
			Coefficients: pipeline.Coefficients{PointerX: 1, PointerY: 1, ScrollX: 1, ScrollY: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.New(tt.cfg)
			assert.Error(t, err)
		})
	}
}
