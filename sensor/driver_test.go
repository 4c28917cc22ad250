package sensor_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbweaver-fw/orbweaver/bus/bustest"
	"github.com/orbweaver-fw/orbweaver/sensor"
)

func newFake() *bustest.Sensor {
	f := bustest.NewSensor()
	f.BurstAddr = sensor.RegMotionBurst
	f.UploadAddr = sensor.RegSROMLoadBurst
	// A live sensor: product id and its complement, nonzero SROM id.
	f.Regs[sensor.RegProductID] = 0x42
	f.Regs[sensor.RegInverseProductID] = 0xbd
	f.Regs[sensor.RegSROMID] = 0xa6
	return f
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReadRegisterFraming(t *testing.T) {
	f := newFake()
	f.Regs[0x2a] = 0x04
	dev := sensor.New(f, discard())

	got := dev.ReadRegister(0x2a)
	assert.Equal(t, byte(0x04), got)

	// select, settle, address, turnaround, pull reply, hold, deselect, idle
	require.Len(t, f.Trace, 8)
	kinds := []bustest.Kind{
		bustest.KindSelect, bustest.KindDelay, bustest.KindTransfer, bustest.KindDelay,
		bustest.KindTransfer, bustest.KindDelay, bustest.KindDeselect, bustest.KindDelay,
	}
	for i, k := range kinds {
		assert.Equal(t, k, f.Trace[i].Kind, "op %d", i)
	}
	assert.Equal(t, byte(0x2a), f.Trace[2].TX, "address byte must not set the write bit")
	assert.Equal(t, 160*time.Microsecond, f.Trace[3].D, "read turnaround")
	assert.Equal(t, byte(0), f.Trace[4].TX)
	assert.Equal(t, byte(0x04), f.Trace[4].RX)
}

func TestWriteRegisterSetsWriteBit(t *testing.T) {
	f := newFake()
	dev := sensor.New(f, discard())

	dev.WriteRegister(0x0f, 0x01)

	require.Len(t, f.WriteLog, 1)
	assert.Equal(t, bustest.RegWrite{Addr: 0x0f, Value: 0x01}, f.WriteLog[0])
	assert.Equal(t, []byte{0x8f, 0x01}, f.Transfers())
}

func TestResetSequence(t *testing.T) {
	f := newFake()
	dev := sensor.New(f, discard())
	image := []byte{0xde, 0xad, 0xbe, 0xef}

	require.NoError(t, dev.Reset(image))
	assert.Equal(t, sensor.StateConfigured, dev.State())

	// Blind command writes, in datasheet order.
	want := []bustest.RegWrite{
		{Addr: sensor.RegShutdown, Value: 0xb6},
		{Addr: sensor.RegPowerUpReset, Value: 0x5a},
		{Addr: sensor.RegConfig2, Value: 0},
		{Addr: sensor.RegSROMEnable, Value: 0x1d},
		{Addr: sensor.RegSROMEnable, Value: 0x18},
		{Addr: sensor.RegConfig2, Value: 0},
	}
	assert.Equal(t, want, f.WriteLog)
	assert.Equal(t, image, f.Uploaded)

	// The five motion registers are drained between wakeup and upload.
	var drained []byte
	for _, op := range f.Trace {
		if op.Kind == bustest.KindTransfer && op.TX >= sensor.RegMotion && op.TX <= sensor.RegDeltaYH {
			drained = append(drained, op.TX)
		}
	}
	assert.Equal(t, []byte{0x02, 0x03, 0x04, 0x05, 0x06}, drained)
}

func TestFirmwareUploadDeterminism(t *testing.T) {
	f := newFake()
	dev := sensor.New(f, discard())
	image := make([]byte, 251)
	for i := range image {
		image[i] = byte(i * 7)
	}

	require.NoError(t, dev.Reset(image))
	require.Equal(t, image, f.Uploaded, "image must upload byte-for-byte, in order")

	// Within the burst-write transaction: the address byte, then exactly
	// one transceive per image byte, each preceded by the fixed inter-byte
	// delay.
	start := -1
	for i, op := range f.Trace {
		if op.Kind == bustest.KindTransfer && op.TX == sensor.RegSROMLoadBurst|0x80 {
			start = i
			break
		}
	}
	require.GreaterOrEqual(t, start, 0, "SROM burst-write transaction not found")

	transfers := 0
	delays := 0
	i := start + 1
	for ; i < len(f.Trace) && f.Trace[i].Kind != bustest.KindDeselect; i++ {
		switch f.Trace[i].Kind {
		case bustest.KindTransfer:
			assert.Equal(t, image[transfers], f.Trace[i].TX)
			transfers++
		case bustest.KindDelay:
			assert.Equal(t, 15*time.Microsecond, f.Trace[i].D)
			delays++
		}
	}
	assert.Equal(t, len(image), transfers)
	assert.Equal(t, len(image)+1, delays, "one delay before each byte plus the exit delay")
}

func TestResetRetriesThenFails(t *testing.T) {
	f := newFake()
	f.Regs[sensor.RegProductID] = 0x00 // dead bus: identity never matches
	f.Regs[sensor.RegInverseProductID] = 0x00
	dev := sensor.New(f, discard())

	err := dev.Reset([]byte{0x01})
	require.Error(t, err)
	assert.NotEqual(t, sensor.StateConfigured, dev.State())

	resets := 0
	for _, w := range f.WriteLog {
		if w.Addr == sensor.RegPowerUpReset {
			resets++
		}
	}
	assert.Equal(t, 3, resets, "reset must retry a bounded number of times")
}

func TestResetRejectsEmptyImage(t *testing.T) {
	dev := sensor.New(newFake(), discard())
	assert.Error(t, dev.Reset(nil))
}

func TestConfigure(t *testing.T) {
	f := newFake()
	dev := sensor.New(f, discard())

	require.NoError(t, dev.Configure(16000, -22))
	assert.Equal(t, sensor.StatePolling, dev.State())

	want := []bustest.RegWrite{
		{Addr: sensor.RegResolutionL, Value: 0x40}, // 16000/50 = 320 = 0x0140
		{Addr: sensor.RegResolutionH, Value: 0x01},
		{Addr: sensor.RegAngleTune, Value: 0xea}, // -22 as a signed byte
		{Addr: sensor.RegMotionBurst, Value: 0},
	}
	assert.Equal(t, want, f.WriteLog)
	assert.Equal(t, 16000, dev.Resolution())
}

func TestConfigureRejectsBadResolution(t *testing.T) {
	dev := sensor.New(newFake(), discard())
	assert.Error(t, dev.Configure(0, 0))
	assert.Error(t, dev.Configure(-50, 0))
	assert.Error(t, dev.Configure(16001, 0))
}

func TestBurstRead(t *testing.T) {
	f := newFake()
	// motion set, squal byte, dx=-3, dy=260
	f.Burst = []byte{0x80, 0x00, 0xfd, 0xff, 0x04, 0x01}
	dev := sensor.New(f, discard())

	s := dev.BurstRead()
	assert.Equal(t, sensor.Sample{DX: -3, DY: 260, Motion: true}, s)
	assert.Equal(t, 7, countTransfers(f), "address, flag byte, then five data bytes")
}

func TestBurstReadNoMotionShortCircuits(t *testing.T) {
	f := newFake()
	f.Burst = []byte{0x00, 0x00, 0x55, 0x55, 0x55, 0x55}
	dev := sensor.New(f, discard())

	s := dev.BurstRead()
	assert.Equal(t, sensor.Sample{}, s)
	assert.Equal(t, 2, countTransfers(f), "remaining bytes must not be clocked when the motion bit is clear")
}

func countTransfers(f *bustest.Sensor) int {
	n := 0
	for _, op := range f.Trace {
		if op.Kind == bustest.KindTransfer {
			n++
		}
	}
	return n
}
