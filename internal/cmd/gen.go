package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/orbweaver-fw/orbweaver/hidreport"
	"github.com/orbweaver-fw/orbweaver/internal/configpaths"
)

// GenCommand groups the artifact-generation subcommands.
type GenCommand struct {
	Config     GenConfig     `cmd:"" help:"Generate a configuration file template."`
	Descriptor GenDescriptor `cmd:"" help:"Emit the HID report descriptor for the gadget setup."`
}

// GenConfig scaffolds a configuration file for a command, with every key
// present at its default value.
type GenConfig struct {
	Command string `arg:"" enum:"run,probe" help:"Command to generate a template for."`
	Format  string `help:"Output format." enum:"json,yaml,toml" default:"yaml"`
	Output  string `help:"Destination path (defaults to <command>.<format>)."`
	Force   bool   `help:"Overwrite an existing file."`
}

func (c *GenConfig) Run() error {
	var root map[string]any
	switch c.Command {
	case "run":
		root = templateFromStruct(reflect.TypeOf(Run{}))
	case "probe":
		root = templateFromStruct(reflect.TypeOf(Probe{}))
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + c.Format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
	}

	var data []byte
	var err error
	switch c.Format {
	case "json":
		data, err = json.MarshalIndent(root, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(root)
	case "toml":
		data, err = toml.Marshal(root)
	}
	if err != nil {
		return err
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// GenDescriptor emits the report descriptor, as raw bytes suitable for a
// USB gadget's report_desc or as hex on stdout.
type GenDescriptor struct {
	Buttons int    `help:"Number of button lines declared in the descriptor." default:"4"`
	Output  string `help:"Destination path; '-' writes hex to stdout." default:"-"`
}

func (c *GenDescriptor) Run() error {
	desc, err := hidreport.Descriptor(c.Buttons)
	if err != nil {
		return err
	}
	if c.Output == "-" {
		fmt.Println(hex.EncodeToString(desc))
		return nil
	}
	return os.WriteFile(c.Output, desc, 0o644)
}

// templateFromStruct maps a command struct to config keys and default
// values, using the same kebab-case names kong derives for flags.
func templateFromStruct(t reflect.Type) map[string]any {
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		out[configKey(f)] = templateValue(f.Type, f.Tag.Get("default"))
	}
	return out
}

func configKey(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return name
	}
	var b strings.Builder
	for i, r := range f.Name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func templateValue(t reflect.Type, def string) any {
	if t == reflect.TypeOf(time.Duration(0)) {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		v, _ := strconv.ParseFloat(def, 64)
		return v
	case reflect.Slice:
		if def == "" {
			return []any{}
		}
		parts := strings.Split(def, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	default:
		return nil
	}
}
