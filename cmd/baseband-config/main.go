// Command baseband-config configures and maintains a PE1OBW baseband
// board from a PC, over an MCP2221A USB bridge or a native I2C bus.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pe1obw/baseband-config/baseband"
	"github.com/pe1obw/baseband-config/transport"
	"github.com/pe1obw/baseband-config/transport/i2cdev"
	"github.com/pe1obw/baseband-config/transport/mcp2221"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, " ") }

func (a *assignments) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("want field=value, got %q", v)
	}
	*a = append(*a, v)
	return nil
}

// fieldPaths collects repeated -get flags.
type fieldPaths []string

func (p *fieldPaths) String() string { return strings.Join(*p, " ") }

func (p *fieldPaths) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// boardLink is a transport the CLI can also close.
type boardLink interface {
	transport.Transport
	Close() error
}

func openTransport(kind string, device int, bus string) (boardLink, error) {
	switch kind {
	case "mcp2221":
		t, err := mcp2221.Open(mcp2221.Config{Index: byte(device)})
		if err != nil {
			return nil, err
		}
		return t, nil
	case "i2c":
		t, err := i2cdev.Open(bus, baseband.Address)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown transport %q (mcp2221, i2c or list)", kind)
}

func must(action string, err error) {
	if err != nil {
		log.Fatal().Err(err).Msg(action + " failed")
	}
}

func main() {
	var (
		transportName = flag.String("transport", "mcp2221", "board connection: mcp2221, i2c or list")
		device        = flag.Int("device", 0, "bridge index when several MCP2221As are attached")
		i2cBus        = flag.String("i2c-bus", "1", "I2C bus name for -transport i2c")
		verbose       = flag.Bool("verbose", false, "debug logging")

		showInfo     = flag.Bool("info", false, "show the active settings and a preset overview")
		showSettings = flag.Bool("show-settings", false, "dump the active settings")
		showPresets  = flag.Bool("show-presets", false, "dump every stored preset")
		dumpOSD      = flag.Bool("dump-osd", false, "dump the on-screen display")
		osdText      = flag.String("osd", "", "write text to the on-screen display (\\n, \\i, \\u, \\0 escapes)")

		settingsTo   = flag.String("settings-to-file", "", "save the active settings to a JSON file")
		settingsFrom = flag.String("settings-from-file", "", "load settings from a JSON file and apply them")

		loadPreset  = flag.Int("load-preset", 0, "recall preset 1..31")
		storePreset = flag.Int("store-preset", 0, "store the active settings to preset 1..31")
		erasePreset = flag.Int("erase-preset", 0, "erase preset 1..31")
		setDefault  = flag.Bool("set-default", false, "restore the factory default settings")

		upgrade  = flag.String("upgrade", "", "flash a firmware image file")
		download = flag.String("download-firmware", "", "save the upgrade flash region to a file")
		flashID  = flag.Bool("flash-id", false, "read the flash JEDEC id")

		patternFrom = flag.String("pattern-from-file", "", "load pattern memory from a hex dump file")
		patternTo   = flag.String("pattern-to-file", "", "save pattern memory to a hex dump file")

		meters    = flag.Bool("meters", false, "live VU meter dashboard (q to quit)")
		pulseGPIO = flag.Int("pulse-gpio", -1, "pulse a bridge GP pin low for 6 s, then exit")
		reboot    = flag.Bool("reboot", false, "reboot the board (always runs last)")
	)
	var setFields assignments
	var getFields fieldPaths
	flag.Var(&setFields, "set", "set a settings field, e.g. -set fm.0.rf_frequency_khz=7020 (repeatable)")
	flag.Var(&getFields, "get", "print a settings field (repeatable)")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if *transportName == "list" {
		bridges := mcp2221.Attached()
		if len(bridges) == 0 {
			fmt.Println("no MCP2221A bridges found")
			return
		}
		for _, b := range bridges {
			fmt.Printf("%d: %s (serial %s)\n", b.Index, b.Product, b.Serial)
		}
		return
	}

	log.Debug().Str("transport", *transportName).Msg("connecting")
	tr, err := openTransport(*transportName, *device, *i2cBus)
	must("connect", err)
	defer tr.Close()

	// The pulse yanks the board's reset line, so nothing else can run
	// after it.
	if *pulseGPIO >= 0 {
		log.Info().Int("pin", *pulseGPIO).Msg("pulsing GP pin")
		must("pulse", tr.PulseGPIO(*pulseGPIO, 6*time.Second))
		return
	}

	d := baseband.New(tr, baseband.Config{})

	info, err := d.Info()
	must("read info", err)
	printInfo(info)

	if *flashID {
		id, err := baseband.NewFlash(d).ID()
		must("read flash id", err)
		fmt.Printf("flash id: %02X %02X %02X\n", id[0], id[1], id[2])
	}
	if *upgrade != "" {
		must("upgrade", upgradeFirmware(d, *upgrade))
	}
	if *download != "" {
		must("download firmware", downloadFirmware(d, *download))
	}

	if *settingsFrom != "" {
		must("load settings file", loadSettingsFile(d, *settingsFrom))
	}
	if len(setFields) > 0 {
		s, err := d.ReadSettings()
		must("read settings", err)
		for _, as := range setFields {
			path, value, _ := strings.Cut(as, "=")
			must("set "+path, s.Set(path, value))
			log.Debug().Str("field", path).Str("value", value).Msg("field set")
		}
		must("write settings", d.WriteSettings(s))
		log.Info().Int("fields", len(setFields)).Msg("settings updated")
	}
	if len(getFields) > 0 {
		s, err := d.ReadSettings()
		must("read settings", err)
		for _, path := range getFields {
			v, err := s.Get(path)
			must("get "+path, err)
			fmt.Printf("%s = %s\n", path, v)
		}
	}
	if *settingsTo != "" {
		must("save settings file", saveSettingsFile(d, *settingsTo))
	}

	if *loadPreset != 0 {
		must("load preset", d.LoadPreset(*loadPreset))
		log.Info().Int("preset", *loadPreset).Msg("preset recalled")
		s, err := d.ReadSettings()
		must("read settings", err)
		printSettings(s)
	}
	if *storePreset != 0 {
		must("store preset", d.StorePreset(*storePreset))
		log.Info().Int("preset", *storePreset).Msg("settings stored")
	}
	if *erasePreset != 0 {
		must("erase preset", d.ErasePreset(*erasePreset))
		log.Info().Int("preset", *erasePreset).Msg("preset erased")
	}
	if *setDefault {
		must("set default", d.SetDefaults())
		log.Info().Msg("factory defaults restored")
	}

	if *showInfo {
		s, err := d.ReadSettings()
		must("read settings", err)
		printSettings(s)
		must("read presets", printPresetTable(d))
	}
	if *showSettings {
		s, err := d.ReadSettings()
		must("read settings", err)
		printSettings(s)
	}
	if *showPresets {
		must("show presets", printPresets(d))
	}

	if *dumpOSD {
		frame, err := d.ReadDisplay()
		must("read display", err)
		printDisplay(frame)
	}
	if *osdText != "" {
		must("write osd", d.WriteOSD(*osdText))
	}

	if *patternFrom != "" {
		src, err := os.ReadFile(*patternFrom)
		must("read pattern file", err)
		img, err := parsePattern(src)
		must("parse pattern file", err)
		must("write pattern", d.WritePattern(0, img))
		log.Info().Str("file", *patternFrom).Msg("pattern memory loaded")
	}
	if *patternTo != "" {
		img, err := d.ReadPattern()
		must("read pattern", err)
		var buf strings.Builder
		must("format pattern", formatPattern(&buf, img))
		must("save pattern file", os.WriteFile(*patternTo, []byte(buf.String()), 0o644))
		log.Info().Str("file", *patternTo).Msg("pattern memory saved")
	}

	if *meters {
		must("meters", runMeters(d))
	}

	if *reboot {
		must("reboot", d.Reboot())
		log.Info().Msg("board rebooting")
	}
}

func saveSettingsFile(d *baseband.Device, name string) error {
	s, err := d.ReadSettings()
	if err != nil {
		return err
	}
	printSettings(s)
	buf, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, append(buf, '\n'), 0o644); err != nil {
		return err
	}
	log.Info().Str("file", name).Msg("settings saved")
	return nil
}

func loadSettingsFile(d *baseband.Device, name string) error {
	buf, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	var s baseband.Settings
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	printSettings(&s)
	if err := d.WriteSettings(&s); err != nil {
		return err
	}
	log.Info().Str("file", name).Msg("settings applied")
	return nil
}

func upgradeFirmware(d *baseband.Device, name string) error {
	image, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	log.Info().Str("file", name).Int("bytes", len(image)).Msg("flashing firmware")
	fl := baseband.NewFlash(d)
	fl.Progress = printProgress
	if err := fl.WriteFirmware(image); err != nil {
		return err
	}
	log.Info().Msg("firmware flashed, reboot the board to run it")
	return nil
}

func downloadFirmware(d *baseband.Device, name string) error {
	fl := baseband.NewFlash(d)
	fl.Progress = printProgress
	image, err := fl.ReadFirmware()
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, image, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", name).Int("bytes", len(image)).Msg("firmware saved")
	return nil
}
