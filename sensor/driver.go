// Package sensor implements the register-level protocol driver for the
// PMW3360 optical motion sensor: read/write transaction framing, the
// reset-and-firmware-upload startup sequence, and the burst motion read
// used by the steady-state polling loop.
//
// The wire protocol has no transaction-level error detection: no CRC, no
// acknowledgment beyond the motion-valid flag. Writes are blind and timing
// is fixed by the datasheet. The driver preserves that discipline; the only
// failure it can detect is the sensor not answering the identity check
// after reset.
package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orbweaver-fw/orbweaver/bus"
)

// State is the logical session state of the attached sensor. Transitions
// run strictly forward at startup; there is no runtime re-entry to earlier
// states short of a power cycle.
type State uint8

const (
	StateUnpowered State = iota
	StateResetting
	StateFirmwareLoading
	StateConfigured
	StatePolling
)

func (s State) String() string {
	switch s {
	case StateUnpowered:
		return "unpowered"
	case StateResetting:
		return "resetting"
	case StateFirmwareLoading:
		return "firmware-loading"
	case StateConfigured:
		return "configured"
	case StatePolling:
		return "polling"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Sample is the result of one burst motion read. Motion is false when the
// sensor reported no activity since the previous read; the deltas are then
// zero by construction.
type Sample struct {
	DX, DY int16
	Motion bool
}

// Device drives one sensor chip over a bus transport. Not safe for
// concurrent use; the polling loop is single-threaded by design.
type Device struct {
	bus   bus.Transport
	log   *slog.Logger
	state State
}

// New returns a driver for a sensor attached to t.
func New(t bus.Transport, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{bus: t, log: logger}
}

// State reports the current session state.
func (d *Device) State() State { return d.state }

// ReadRegister performs one framed register read.
func (d *Device) ReadRegister(addr byte) byte {
	d.bus.Select()
	d.bus.Delay(tSelectSettle)
	d.bus.Transceive(addr)
	d.bus.Delay(tSRAD)
	v := d.bus.Transceive(0)
	d.bus.Delay(tReadHold)
	d.bus.Deselect()
	d.bus.Delay(tSRWR - tReadHold)
	return v
}

// WriteRegister performs one framed register write. The write is blind;
// there is no acknowledgment to check.
func (d *Device) WriteRegister(addr, value byte) {
	d.bus.Select()
	d.bus.Delay(tSelectSettle)
	d.bus.Transceive(addr | writeBit)
	d.bus.Transceive(value)
	d.bus.Delay(tWriteHold)
	d.bus.Deselect()
	d.bus.Delay(tSWWR - tWriteHold)
}

// resetAttempts bounds the identity-check retry loop so a dead or absent
// sensor fails startup instead of hanging it.
const resetAttempts = 3

// Reset shuts the sensor down, powers it back up, drains stale motion
// state and uploads the vendor firmware image, leaving the session in
// StateConfigured. The image is opaque: only its length and byte order
// matter. Reset retries the full sequence a bounded number of times if the
// sensor fails the post-upload identity check.
func (d *Device) Reset(image []byte) error {
	if len(image) == 0 {
		return errors.New("sensor: empty firmware image")
	}
	for attempt := 1; ; attempt++ {
		sromID := d.reset(image)
		if err := d.bus.Err(); err != nil {
			return fmt.Errorf("sensor: bus fault during reset: %w", err)
		}

		id, inverse, ok := d.Identify()
		if ok {
			d.state = StateConfigured
			d.log.Debug("sensor reset complete",
				"attempt", attempt,
				"product_id", fmt.Sprintf("%#02x", id),
				"srom_id", fmt.Sprintf("%#02x", sromID))
			return nil
		}
		if attempt == resetAttempts {
			return fmt.Errorf("sensor: no response after %d reset attempts (product id %#02x, inverse %#02x)",
				attempt, id, inverse)
		}
		d.log.Warn("sensor identity check failed, retrying reset",
			"attempt", attempt,
			"product_id", fmt.Sprintf("%#02x", id),
			"inverse", fmt.Sprintf("%#02x", inverse))
	}
}

// reset runs one pass of the full reset/upload sequence and returns the
// SROM ID register value read after the upload.
func (d *Device) reset(image []byte) byte {
	d.state = StateResetting

	// Shut down, then wake back up.
	d.bus.Deselect()
	d.bus.Delay(tSRWR)
	d.WriteRegister(RegShutdown, cmdShutdown)
	d.bus.Delay(tShutdownSettle)

	d.bus.Deselect()
	d.bus.Delay(tSRWR)
	d.WriteRegister(RegPowerUpReset, cmdPowerUpReset)
	d.bus.Delay(tWakeup)

	// Drain the motion registers; values are stale and discarded.
	for addr := byte(RegMotion); addr <= RegDeltaYH; addr++ {
		d.ReadRegister(addr)
	}

	// Upload the vendor firmware image over the dedicated burst-write
	// transaction: one address byte, then the image byte-for-byte with a
	// fixed inter-byte delay.
	d.state = StateFirmwareLoading
	d.WriteRegister(RegConfig2, 0)
	d.WriteRegister(RegSROMEnable, cmdSROMDownloadInit)
	d.bus.Delay(tSROMEnable)
	d.WriteRegister(RegSROMEnable, cmdSROMDownloadStart)

	d.bus.Select()
	d.bus.Delay(tSelectSettle)
	d.bus.Transceive(RegSROMLoadBurst | writeBit)
	for _, b := range image {
		d.bus.Delay(tSROMByte)
		d.bus.Transceive(b)
	}
	d.bus.Delay(tSROMByte)
	d.bus.Deselect()
	d.bus.Delay(tSROMSettle - tSROMByte)

	sromID := d.ReadRegister(RegSROMID)
	d.WriteRegister(RegConfig2, 0)
	return sromID
}

// Identify reads the product identity registers and reports whether the
// values match a live sensor: ProductID and its bitwise complement.
func (d *Device) Identify() (id, inverse byte, ok bool) {
	id = d.ReadRegister(RegProductID)
	inverse = d.ReadRegister(RegInverseProductID)
	return id, inverse, id == productID && inverse == ^byte(productID)
}

// Configure writes the optical resolution and mounting-angle correction,
// then arms burst mode. resolution is in CPI and must be a positive
// multiple of 50; angle is in degrees.
func (d *Device) Configure(resolution int, angle int8) error {
	if resolution <= 0 || resolution%50 != 0 || resolution/50 > 0xffff {
		return fmt.Errorf("sensor: resolution %d CPI is not a positive multiple of 50", resolution)
	}
	r := uint16(resolution / 50)
	d.WriteRegister(RegResolutionL, byte(r))
	d.WriteRegister(RegResolutionH, byte(r>>8))
	d.WriteRegister(RegAngleTune, byte(angle))

	// Writing the burst register arms burst mode until the next
	// non-burst register access.
	d.WriteRegister(RegMotionBurst, 0)
	d.state = StatePolling
	return nil
}

// Resolution reads back the configured optical resolution in CPI.
func (d *Device) Resolution() int {
	l := d.ReadRegister(RegResolutionL)
	h := d.ReadRegister(RegResolutionH)
	return int(uint16(h)<<8|uint16(l)) * 50
}

// BurstRead performs one motion burst read. If the motion flag in the
// first byte is clear the remaining bytes are not clocked and a zero,
// invalid sample is returned; a quiescent sensor and a faulted bus are
// indistinguishable here by protocol design.
func (d *Device) BurstRead() Sample {
	d.bus.Select()
	d.bus.Delay(tSelectSettle)
	d.bus.Transceive(RegMotionBurst)
	d.bus.Delay(tSRADBurst)

	var block [burstBlockLen]byte
	block[0] = d.bus.Transceive(0)
	if block[0]&motionBit == 0 {
		d.bus.Deselect()
		d.bus.Delay(tBurstExit)
		return Sample{}
	}
	for i := 1; i < burstBlockLen; i++ {
		block[i] = d.bus.Transceive(0)
	}
	d.bus.Deselect()
	d.bus.Delay(tBurstExit)

	return Sample{
		DX:     int16(binary.LittleEndian.Uint16(block[2:4])),
		DY:     int16(binary.LittleEndian.Uint16(block[4:6])),
		Motion: true,
	}
}
