package cmd

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/orbweaver-fw/orbweaver/bus"
)

// The sensor tops out at 2 MHz on the serial bus.
const busFrequency = 2 * physic.MegaHertz

// openTransport initializes the host drivers and opens the sensor bus:
// hardware SPI in mode 3 with driver-managed chip-select disabled, plus a
// dedicated GPIO select line so transaction timing stays under our
// control. The returned closer releases the SPI port.
func openTransport(spiPort, csName string) (*bus.Conn, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("initialize host drivers: %w", err)
	}
	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, nil, fmt.Errorf("open SPI port %q: %w", spiPort, err)
	}
	conn, err := port.Connect(busFrequency, spi.Mode3|spi.NoCS, 8)
	if err != nil {
		_ = port.Close()
		return nil, nil, fmt.Errorf("configure SPI port %q: %w", spiPort, err)
	}
	cs := gpioreg.ByName(csName)
	if cs == nil {
		_ = port.Close()
		return nil, nil, fmt.Errorf("unknown chip-select pin %q", csName)
	}
	if err := cs.Out(gpio.High); err != nil {
		_ = port.Close()
		return nil, nil, fmt.Errorf("deassert chip-select %q: %w", csName, err)
	}
	return bus.New(conn, cs), port, nil
}

// openInputs configures the named lines as pulled-up inputs. The buttons
// and the scroll toggle all switch to ground, so a low read means pressed.
func openInputs(names []string) ([]gpio.PinIO, error) {
	pins := make([]gpio.PinIO, 0, len(names))
	for _, n := range names {
		p := gpioreg.ByName(n)
		if p == nil {
			return nil, fmt.Errorf("unknown input pin %q", n)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure input pin %q: %w", n, err)
		}
		pins = append(pins, p)
	}
	return pins, nil
}

// sampleMask reads the button lines into a bitmask; line order defines bit
// position, and a low (pressed) read sets the bit.
func sampleMask(pins []gpio.PinIO) uint8 {
	var mask uint8
	for i, p := range pins {
		if p.Read() == gpio.Low {
			mask |= 1 << i
		}
	}
	return mask
}
