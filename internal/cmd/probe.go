package cmd

import (
	"fmt"
	"log/slog"

	"github.com/orbweaver-fw/orbweaver/sensor"
)

// Probe reads the sensor identity registers without resetting or
// configuring anything, for wiring bring-up. The values are meaningful on
// a freshly powered sensor; after a firmware upload the SROM ID reads
// nonzero as well.
type Probe struct {
	SpiPort    string `help:"SPI port name or device path." default:"/dev/spidev0.0" env:"ORBWEAVER_SPI_PORT"`
	ChipSelect string `help:"GPIO name of the sensor chip-select line." default:"GPIO8" env:"ORBWEAVER_CHIP_SELECT"`
}

// Run is called by kong when the probe command is selected.
func (p *Probe) Run(logger *slog.Logger) error {
	transport, closer, err := openTransport(p.SpiPort, p.ChipSelect)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	dev := sensor.New(transport, logger)
	id, inverse, ok := dev.Identify()
	sromID := dev.ReadRegister(sensor.RegSROMID)
	resolution := dev.Resolution()
	if err := transport.Err(); err != nil {
		return fmt.Errorf("bus fault while probing: %w", err)
	}

	logger.Info("sensor identification",
		"product_id", fmt.Sprintf("%#02x", id),
		"inverse_product_id", fmt.Sprintf("%#02x", inverse),
		"srom_id", fmt.Sprintf("%#02x", sromID),
		"resolution_cpi", resolution)

	if !ok {
		logger.Warn("identity check failed; check wiring and sensor power")
		return fmt.Errorf("unexpected product id %#02x (inverse %#02x)", id, inverse)
	}
	logger.Info("sensor answered identity check")
	return nil
}
