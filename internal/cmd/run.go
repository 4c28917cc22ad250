package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/orbweaver-fw/orbweaver/firmware"
	"github.com/orbweaver-fw/orbweaver/hidreport"
	"github.com/orbweaver-fw/orbweaver/internal/log"
	"github.com/orbweaver-fw/orbweaver/internal/rt"
	"github.com/orbweaver-fw/orbweaver/pipeline"
	"github.com/orbweaver-fw/orbweaver/sensor"
)

// Run is the polling daemon: reset and configure the sensor once, then
// convert motion and button state into input reports at a fixed interval
// until interrupted.
type Run struct {
	SpiPort      string   `help:"SPI port name or device path." default:"/dev/spidev0.0" env:"ORBWEAVER_SPI_PORT"`
	ChipSelect   string   `help:"GPIO name of the sensor chip-select line." default:"GPIO8" env:"ORBWEAVER_CHIP_SELECT"`
	Buttons      []string `help:"Button GPIO names, in report bit order." default:"GPIO17,GPIO27,GPIO22,GPIO23"`
	ScrollToggle string   `help:"GPIO name of the scroll-mode toggle line; empty disables it." default:"GPIO24"`
	Firmware     string   `help:"Path to the vendor sensor firmware image." default:"/usr/share/orbweaver/pmw3360.bin" env:"ORBWEAVER_FIRMWARE"`
	ReportDevice string   `help:"HID gadget endpoint reports are written to." default:"/dev/hidg0" env:"ORBWEAVER_REPORT_DEVICE"`

	Resolution int  `help:"Optical resolution in CPI, a multiple of 50." default:"16000"`
	Angle      int8 `help:"Mounting-angle correction in degrees." default:"-22"`

	PointerSensitivity float64 `help:"Pointer sensitivity coefficient, both axes." default:"0.012"`
	ScrollSensitivityX float64 `help:"Horizontal scroll sensitivity coefficient." default:"0.35"`
	ScrollSensitivityY float64 `help:"Vertical scroll sensitivity coefficient." default:"0.35"`

	DebounceInterval int           `help:"Consecutive matching polls required to commit a button change." default:"5"`
	PollingInterval  time.Duration `help:"Polling tick interval." default:"2ms"`

	LockMemory bool `help:"Lock process memory and raise scheduler priority." default:"true" negatable:""`
}

// Run is called by kong when the run command is selected.
func (r *Run) Run(logger *slog.Logger) error {
	if len(r.Buttons) == 0 || len(r.Buttons) > 8 {
		return fmt.Errorf("need between 1 and 8 button lines, got %d", len(r.Buttons))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	image, err := firmware.Load(r.Firmware)
	if err != nil {
		return err
	}
	logger.Info("firmware image loaded",
		"path", r.Firmware, "bytes", len(image), "digest", firmware.Digest(image))

	pl, err := pipeline.New(pipeline.Config{
		Coefficients: pipeline.Coefficients{
			PointerX: r.PointerSensitivity,
			PointerY: r.PointerSensitivity,
			ScrollX:  r.ScrollSensitivityX,
			ScrollY:  r.ScrollSensitivityY,
		},
		DebounceThreshold: r.DebounceInterval,
	})
	if err != nil {
		return err
	}

	transport, closer, err := openTransport(r.SpiPort, r.ChipSelect)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	buttons, err := openInputs(r.Buttons)
	if err != nil {
		return err
	}
	var scrollPin gpio.PinIO
	if r.ScrollToggle != "" {
		pins, err := openInputs([]string{r.ScrollToggle})
		if err != nil {
			return err
		}
		scrollPin = pins[0]
	}

	out, err := os.OpenFile(r.ReportDevice, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open report device %q: %w", r.ReportDevice, err)
	}
	defer func() { _ = out.Close() }()
	sink := hidreport.NewWriterSink(out)

	if r.LockMemory {
		if err := rt.LockMemory(); err != nil {
			logger.Warn("memory locking unavailable", "error", err)
		}
		if err := rt.RaisePriority(); err != nil {
			logger.Warn("scheduler priority unchanged", "error", err)
		}
	}

	dev := sensor.New(transport, logger)
	if err := dev.Reset(image); err != nil {
		return err
	}
	if err := dev.Configure(r.Resolution, r.Angle); err != nil {
		return err
	}
	logger.Info("sensor configured",
		"resolution_cpi", r.Resolution, "angle", r.Angle, "state", dev.State().String())

	return r.poll(ctx, logger, dev, pl, buttons, scrollPin, sink)
}

func (r *Run) poll(ctx context.Context, logger *slog.Logger, dev *sensor.Device,
	pl *pipeline.Pipeline, buttons []gpio.PinIO, scrollPin gpio.PinIO, sink hidreport.Sink) error {

	logger.Info("polling", "interval", r.PollingInterval, "buttons", len(buttons))
	tick := time.NewTicker(r.PollingInterval)
	defer tick.Stop()

	last := pl.Buttons()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-tick.C:
		}

		s := dev.BurstRead()
		raw := sampleMask(buttons)
		scroll := scrollPin != nil && scrollPin.Read() == gpio.Low
		rep, motion := pl.Tick(s, raw, scroll)

		// Idle polls produce a valid empty report but nothing is owed to
		// the host; hand over only on motion or a settled button change.
		if !motion && rep.Buttons == last {
			continue
		}
		last = rep.Buttons
		if err := sink.WriteReport(rep); err != nil {
			return err
		}
		logger.Log(ctx, log.LevelTrace, "report",
			"buttons", rep.Buttons, "x", rep.X, "y", rep.Y, "pan", rep.Pan, "wheel", rep.Wheel)
	}
}
