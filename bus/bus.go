// Package bus implements the 4-wire synchronous serial transport used to
// talk to the optical motion sensor: a full-duplex single-byte transceive
// primitive plus chip-select control. The transport has no knowledge of
// sensor registers; all transaction framing and timing sequencing is owned
// by the caller.
package bus

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Transport is the raw byte-level bus primitive.
//
// Transceive clocks one byte out while simultaneously clocking one byte in,
// shift-register style, and blocks until the exchange completes. Select and
// Deselect toggle the chip-select line; the caller is responsible for the
// settle delay after assertion and the quiet time after deassertion, issued
// through Delay. The primitive itself cannot fail mid-transaction; Err
// surfaces the first underlying wire fault observed since the last call so
// callers can check transport health at transaction-sequence boundaries.
type Transport interface {
	Transceive(b byte) byte
	Select()
	Deselect()
	Delay(d time.Duration)
	Err() error
}

// Conn drives the sensor over a hardware SPI connection with a dedicated
// chip-select line. The SPI connection must be opened with driver-managed
// chip-select disabled (spi.NoCS); the sensor requires select to stay
// asserted across multi-byte transactions with caller-controlled timing,
// which driver-managed select cannot guarantee.
type Conn struct {
	spi   spi.Conn
	cs    gpio.PinOut
	sleep func(time.Duration)
	err   error
	tx    [1]byte
	rx    [1]byte
}

// New returns a Conn over the given SPI connection and chip-select pin.
// The pin should already be configured as an output, deasserted (high).
func New(c spi.Conn, cs gpio.PinOut) *Conn {
	return &Conn{spi: c, cs: cs, sleep: time.Sleep}
}

// Transceive exchanges a single byte with the sensor.
func (c *Conn) Transceive(b byte) byte {
	c.tx[0] = b
	c.rx[0] = 0
	if err := c.spi.Tx(c.tx[:], c.rx[:]); err != nil && c.err == nil {
		c.err = err
	}
	return c.rx[0]
}

// Select asserts the chip-select line (active low).
func (c *Conn) Select() {
	if err := c.cs.Out(gpio.Low); err != nil && c.err == nil {
		c.err = err
	}
}

// Deselect deasserts the chip-select line.
func (c *Conn) Deselect() {
	if err := c.cs.Out(gpio.High); err != nil && c.err == nil {
		c.err = err
	}
}

// Delay blocks for at least d. The sensor's setup/hold minimums are well
// below scheduler resolution, so oversleeping is harmless; only the
// minimum matters.
func (c *Conn) Delay(d time.Duration) {
	c.sleep(d)
}

// Err returns the first wire fault recorded since the last call, or nil.
// The fault is cleared once returned.
func (c *Conn) Err() error {
	err := c.err
	c.err = nil
	return err
}
