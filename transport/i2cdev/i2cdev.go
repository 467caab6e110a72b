// Package i2cdev is a transport driver for a native Linux I2C bus, for
// hosts with the board wired straight to the header (typically a
// Raspberry Pi).
package i2cdev

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/pe1obw/baseband-config/transport"
)

// Transport drives the board through /dev/i2c-*.
type Transport struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

var _ transport.Transport = (*Transport)(nil)

// Open initializes the host drivers and opens bus, a name like "1" or
// "/dev/i2c-1" (empty selects the first available), with the board at
// addr.
func Open(bus string, addr uint16) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2cdev: host init: %w", err)
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("i2cdev: open bus %q: %w", bus, err)
	}
	log.Debug().Str("bus", b.String()).Uint16("addr", addr).Msg("i2c bus open")
	return &Transport{bus: b, dev: &i2c.Dev{Bus: b, Addr: addr}}, nil
}

// Close releases the bus.
func (t *Transport) Close() error {
	return t.bus.Close()
}

func (t *Transport) Write(p []byte) error {
	if err := t.dev.Tx(p, nil); err != nil {
		return fmt.Errorf("i2cdev: write %d bytes: %w", len(p), err)
	}
	return nil
}

func (t *Transport) Read(p []byte) error {
	if err := t.dev.Tx(nil, p); err != nil {
		return fmt.Errorf("i2cdev: read %d bytes: %w", len(p), err)
	}
	return nil
}

func (t *Transport) Exchange(w, r []byte) error {
	if err := t.dev.Tx(w, r); err != nil {
		return fmt.Errorf("i2cdev: exchange %d/%d bytes: %w", len(w), len(r), err)
	}
	return nil
}

// PulseGPIO drives the host pin named GPIO<pin> low for d and releases it
// high again, for boards with the reset line wired to the header.
func (t *Transport) PulseGPIO(pin int, d time.Duration) error {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return fmt.Errorf("i2cdev: no pin GPIO%d: %w", pin, transport.ErrGPIOUnsupported)
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("i2cdev: drive GPIO%d low: %w", pin, err)
	}
	time.Sleep(d)
	if err := p.Out(gpio.High); err != nil {
		return fmt.Errorf("i2cdev: drive GPIO%d high: %w", pin, err)
	}
	return nil
}
