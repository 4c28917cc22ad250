package sensor

import "time"

// Register map of the PMW3360 optical motion sensor.
const (
	RegProductID        = 0x00
	RegMotion           = 0x02
	RegDeltaXL          = 0x03
	RegDeltaXH          = 0x04
	RegDeltaYL          = 0x05
	RegDeltaYH          = 0x06
	RegResolutionL      = 0x0e
	RegResolutionH      = 0x0f
	RegConfig2          = 0x10
	RegAngleTune        = 0x11
	RegSROMEnable       = 0x13
	RegSROMID           = 0x2a
	RegPowerUpReset     = 0x3a
	RegShutdown         = 0x3b
	RegInverseProductID = 0x3f
	RegMotionBurst      = 0x50
	RegSROMLoadBurst    = 0x62
)

const (
	// Bit 7 of the address byte selects a write transaction.
	writeBit = 0x80

	cmdShutdown          = 0xb6
	cmdPowerUpReset      = 0x5a
	cmdSROMDownloadInit  = 0x1d
	cmdSROMDownloadStart = 0x18

	// ProductID reads back 0x42 on a live sensor; InverseProductID is its
	// complement. Used to verify the chip answered the reset sequence.
	productID = 0x42

	// Bit 7 of the first burst byte: motion occurred since the last read.
	motionBit = 0x80

	// The motion burst block is 12 bytes total; the delta fields live in
	// the first 6 and the rest is surface-quality telemetry we never use.
	burstBlockLen = 6
)

// Bus timing minimums from the sensor datasheet. These are the protocol
// contract, not tunables: every transaction must respect them exactly.
const (
	tSelectSettle   = 120 * time.Nanosecond  // tNCS-SCLK: select assert to first clock
	tSRAD           = 160 * time.Microsecond // address to data turnaround, register read
	tSRADBurst      = 35 * time.Microsecond  // address to data turnaround, motion burst
	tReadHold       = 120 * time.Nanosecond  // tSCLK-NCS: last clock to deselect, reads
	tWriteHold      = 35 * time.Microsecond  // last clock to deselect, writes
	tSRWR           = 20 * time.Microsecond  // quiet time following a read
	tSWWR           = 180 * time.Microsecond // quiet time following a write
	tBurstExit      = 500 * time.Nanosecond  // deselect hold after a burst read
	tShutdownSettle = 500 * time.Nanosecond  // after the shutdown command
	tWakeup         = 50 * time.Millisecond  // after the power-up-reset command
	tSROMEnable     = 10 * time.Millisecond  // between the two SROM enable codes
	tSROMByte       = 15 * time.Microsecond  // between consecutive SROM image bytes
	tSROMSettle     = 200 * time.Microsecond // after the SROM burst completes
)
