// Package cmd contains the kong command implementations behind the
// orbweaver binary.
package cmd

// CLI is the root command grammar. Values may come from flags, environment
// variables or a configuration file; flags win.
type CLI struct {
	Log struct {
		Level string `help:"Log level." enum:"trace,debug,info,warn,error" default:"info" env:"ORBWEAVER_LOG_LEVEL"`
		File  string `help:"Append logs to this file instead of the console." env:"ORBWEAVER_LOG_FILE"`
	} `embed:"" prefix:"log."`
	Config string `help:"Path to a configuration file." env:"ORBWEAVER_CONFIG" type:"path"`

	Run   Run        `cmd:"" help:"Reset the sensor, upload its firmware and run the polling loop."`
	Probe Probe      `cmd:"" help:"Read the sensor identity registers and exit."`
	Gen   GenCommand `cmd:"" help:"Generate configuration templates and HID artifacts."`
}
