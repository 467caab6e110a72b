// Package baseband drives the PE1OBW baseband FPGA board over its I2C
// slave interface.
//
// Design notes (protocol summary):
// • Every transfer starts with the 16-bit big-endian register address;
//   the address auto-increments so whole regions move in one exchange.
// • Commands are written to 0x30<id> with one parameter byte; the status
//   register at 0x3000 reads nonzero until the command completes.
// • Settings, preview and readout are packed little-endian images that
//   must match the firmware's layout exactly (codec.go).
// • The 0x7000 region tunnels SPI transfers to the configuration NOR
//   flash; the low address bits carry the transfer length (flash.go).
package baseband

import (
	"fmt"
	"time"

	"github.com/pe1obw/baseband-config/transport"
)

// ---------------- Configuration ----------------

// Config adjusts protocol timing. The zero value selects the defaults.
type Config struct {
	// PollInterval is the delay between command status polls.
	PollInterval time.Duration
	// CommandTimeout bounds how long a command may stay busy before the
	// poll loop gives up.
	CommandTimeout time.Duration
}

const (
	defaultPollInterval   = 10 * time.Millisecond
	defaultCommandTimeout = 5 * time.Second
)

// Device is a client for one board behind a transport.
type Device struct {
	t   transport.Transport
	cfg Config
}

// New returns a Device speaking through t.
func New(t transport.Transport, cfg Config) *Device {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}
	return &Device{t: t, cfg: cfg}
}

// ---------------- Register access ----------------

func regionCheck(base uint16, offset, n int) error {
	span := regionSpan(base)
	if offset < 0 || n < 0 || (span != 0 && offset+n > span) {
		return &RegionError{Region: regionName(base), Offset: offset, Length: n}
	}
	return nil
}

// readRegion fills p from the registers at base+offset.
func (d *Device) readRegion(base uint16, offset int, p []byte) error {
	if err := regionCheck(base, offset, len(p)); err != nil {
		return err
	}
	addr := base + uint16(offset)
	if err := d.t.Exchange([]byte{byte(addr >> 8), byte(addr)}, p); err != nil {
		return fmt.Errorf("baseband: read %s @0x%04X: %w", regionName(base), addr, err)
	}
	return nil
}

// writeRegion writes p to the registers at base+offset.
func (d *Device) writeRegion(base uint16, offset int, p []byte) error {
	if err := regionCheck(base, offset, len(p)); err != nil {
		return err
	}
	addr := base + uint16(offset)
	buf := make([]byte, 2+len(p))
	buf[0] = byte(addr >> 8)
	buf[1] = byte(addr)
	copy(buf[2:], p)
	if err := d.t.Write(buf); err != nil {
		return fmt.Errorf("baseband: write %s @0x%04X: %w", regionName(base), addr, err)
	}
	return nil
}

// ---------------- Command protocol ----------------

// command issues cmd with param and polls the status register until the
// firmware reports completion.
func (d *Device) command(cmd, param byte) error {
	status := make([]byte, 1)
	if err := d.t.Exchange([]byte{regionCommand >> 8, cmd, param}, status); err != nil {
		return fmt.Errorf("baseband: command 0x%02X: %w", cmd, err)
	}
	start := time.Now()
	for status[0] != 0 {
		if elapsed := time.Since(start); elapsed > d.cfg.CommandTimeout {
			return &CommandTimeoutError{Command: cmd, Elapsed: elapsed}
		}
		time.Sleep(d.cfg.PollInterval)
		if err := d.t.Exchange([]byte{regionCommand >> 8, 0x00}, status); err != nil {
			return fmt.Errorf("baseband: command 0x%02X status: %w", cmd, err)
		}
	}
	return nil
}

// Reboot restarts the board. The firmware never acks this command and the
// board drops off the bus, so it is a bare write with no status poll.
func (d *Device) Reboot() error {
	if err := d.t.Write([]byte{regionCommand >> 8, cmdReboot, 1}); err != nil {
		return fmt.Errorf("baseband: reboot: %w", err)
	}
	return nil
}

// ---------------- Settings ----------------

// ReadSettings reads and decodes the live settings image.
func (d *Device) ReadSettings() (*Settings, error) {
	buf := make([]byte, SettingsSize)
	if err := d.readRegion(regionSettings, 0, buf); err != nil {
		return nil, err
	}
	s := new(Settings)
	if err := s.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteSettings encodes s into the settings image and issues the update
// command so the hardware applies it.
func (d *Device) WriteSettings(s *Settings) error {
	buf, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := d.writeRegion(regionSettings, 0, buf); err != nil {
		return err
	}
	return d.command(cmdUpdateSettings, 1)
}

// SetDefaults resets the live settings to the firmware defaults.
func (d *Device) SetDefaults() error {
	return d.command(cmdSetDefault, 1)
}

// ---------------- Font and pattern memories ----------------

// ReadFont reads the OSD font memory (128 glyphs of 16 bytes).
func (d *Device) ReadFont() ([]byte, error) {
	buf := make([]byte, FontSize)
	if err := d.readRegion(regionFont, 0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFont replaces the OSD font memory.
func (d *Device) WriteFont(font []byte) error {
	if len(font) != FontSize {
		return &LayoutError{What: "font image", Got: len(font), Want: FontSize}
	}
	return d.writeRegion(regionFont, 0, font)
}

// ReadPattern reads the whole pattern generator memory.
func (d *Device) ReadPattern() ([]byte, error) {
	buf := make([]byte, PatternSize)
	if err := d.readRegion(regionPattern, 0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WritePattern writes data into the pattern memory at offset. Partial
// writes are deliberate: pattern files address individual lines.
func (d *Device) WritePattern(offset int, data []byte) error {
	return d.writeRegion(regionPattern, offset, data)
}

// ---------------- Raw I/O registers ----------------

// ReadIORegisters reads n raw hardware registers starting at offset.
// The span is unchecked; the register file layout is firmware-defined.
func (d *Device) ReadIORegisters(offset, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := d.readRegion(regionIORegs, offset, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteIORegisters writes raw hardware registers starting at offset.
func (d *Device) WriteIORegisters(offset int, data []byte) error {
	return d.writeRegion(regionIORegs, offset, data)
}

// ---------------- Bridge extras ----------------

// PulseGPIO pulses a GPIO pin on the bridge, for boards with the reset
// line wired to one. Transports without GPIO control return
// transport.ErrGPIOUnsupported.
func (d *Device) PulseGPIO(pin int, duration time.Duration) error {
	return d.t.PulseGPIO(pin, duration)
}
