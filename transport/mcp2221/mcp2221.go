// Package mcp2221 is a transport driver for the MCP2221A USB-to-I2C
// bridge, the usual way of talking to the board from a PC.
package mcp2221

import (
	"fmt"
	"time"

	mcp2221a "github.com/ardnew/mcp2221a"
	"github.com/rs/zerolog/log"

	"github.com/pe1obw/baseband-config/transport"
)

// Config selects the bridge and bus parameters. The zero value opens the
// first attached bridge at 400 kHz.
type Config struct {
	// Index selects among multiple attached bridges.
	Index byte
	// ClockHz is the I2C bus clock. The bridge is the bottleneck here;
	// the board itself keeps up with 400 kHz without stretching.
	ClockHz uint32
	// SlaveAddr is the board's 7-bit I2C address; 0 selects the fixed
	// address the baseband firmware listens on.
	SlaveAddr uint8
}

// DeviceInfo describes one attached bridge.
type DeviceInfo struct {
	Index   int
	Product string
	Serial  string
}

// Attached lists the MCP2221A bridges found on the USB bus, in the index
// order Open uses.
func Attached() []DeviceInfo {
	var out []DeviceInfo
	for i, d := range mcp2221a.AttachedDevices(mcp2221a.VID, mcp2221a.PID) {
		out = append(out, DeviceInfo{Index: i, Product: d.Product, Serial: d.Serial})
	}
	return out
}

// Transport drives the board through an MCP2221A.
type Transport struct {
	dev  *mcp2221a.MCP2221A
	addr uint8
}

var _ transport.Transport = (*Transport)(nil)

// Open attaches to the bridge and configures the bus clock.
func Open(cfg Config) (*Transport, error) {
	if cfg.ClockHz == 0 {
		cfg.ClockHz = 400000
	}
	if cfg.SlaveAddr == 0 {
		cfg.SlaveAddr = 0x58
	}
	dev, err := mcp2221a.New(cfg.Index, mcp2221a.VID, mcp2221a.PID)
	if err != nil {
		return nil, fmt.Errorf("mcp2221: open bridge %d: %w", cfg.Index, err)
	}
	if err := dev.I2C.SetConfig(cfg.ClockHz); err != nil {
		dev.Close()
		return nil, fmt.Errorf("mcp2221: set bus clock: %w", err)
	}
	log.Debug().Int("bridge", int(cfg.Index)).Uint32("clock_hz", cfg.ClockHz).
		Msg("mcp2221 bridge open")
	return &Transport{dev: dev, addr: cfg.SlaveAddr}, nil
}

// Close releases the USB device.
func (t *Transport) Close() error {
	return t.dev.Close()
}

func (t *Transport) Write(p []byte) error {
	if err := t.dev.I2C.Write(true, t.addr, p, uint16(len(p))); err != nil {
		return fmt.Errorf("mcp2221: write %d bytes: %w", len(p), err)
	}
	return nil
}

func (t *Transport) Read(p []byte) error {
	r, err := t.dev.I2C.Read(false, t.addr, uint16(len(p)))
	if err != nil {
		return fmt.Errorf("mcp2221: read %d bytes: %w", len(p), err)
	}
	copy(p, r)
	return nil
}

// Exchange writes w without a stop condition and reads r after a repeated
// start, which is what the board's register protocol expects. The bridge
// firmware fragments both phases into HID reports on its own.
func (t *Transport) Exchange(w, r []byte) error {
	if err := t.dev.I2C.Write(false, t.addr, w, uint16(len(w))); err != nil {
		return fmt.Errorf("mcp2221: exchange write %d bytes: %w", len(w), err)
	}
	rr, err := t.dev.I2C.Read(true, t.addr, uint16(len(r)))
	if err != nil {
		return fmt.Errorf("mcp2221: exchange read %d bytes: %w", len(r), err)
	}
	copy(r, rr)
	return nil
}

// PulseGPIO drives a bridge GP pin low for d and releases it high again.
// Boards with the reset line wired to a GP pin reboot on this.
func (t *Transport) PulseGPIO(pin int, d time.Duration) error {
	if pin < 0 || pin >= mcp2221a.GPPinCount {
		return fmt.Errorf("mcp2221: no GP pin %d", pin)
	}
	p := byte(pin)
	if err := t.dev.GPIO.SetConfig(p, 1, mcp2221a.ModeGPIO, mcp2221a.DirOutput); err != nil {
		return fmt.Errorf("mcp2221: configure GP%d: %w", pin, err)
	}
	if err := t.dev.GPIO.Set(p, 0); err != nil {
		return fmt.Errorf("mcp2221: drive GP%d low: %w", pin, err)
	}
	time.Sleep(d)
	if err := t.dev.GPIO.Set(p, 1); err != nil {
		return fmt.Errorf("mcp2221: drive GP%d high: %w", pin, err)
	}
	return nil
}
