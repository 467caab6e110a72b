// Package transport defines the byte-level contract between the baseband
// core and the USB-to-I2C bridges it can run over.
//
// All register traffic is a plain I2C write (2-byte big-endian address plus
// payload) or a write followed by a repeated-start read. Implementations own
// exactly one slave connection; the contract is synchronous and must not be
// used from more than one goroutine at a time.
package transport

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// ErrGPIOUnsupported is returned by bridges without usable GPIO pins.
var ErrGPIOUnsupported = errors.New("transport: gpio not supported")

// Transport is the minimal bridge contract the baseband core consumes.
type Transport interface {
	// Write performs a bare I2C write of p to the slave.
	Write(p []byte) error
	// Read performs a bare I2C read filling p completely.
	Read(p []byte) error
	// Exchange writes w, then reads len(r) bytes with a repeated start,
	// without releasing the bus in between.
	Exchange(w, r []byte) error
	// PulseGPIO drives a bridge GPIO pin low for d, then releases it high.
	// Blocks for the full duration. Bridges without GPIO return
	// ErrGPIOUnsupported.
	PulseGPIO(pin int, d time.Duration) error
}

// FromI2C adapts any drivers.I2C bus to the Transport contract, addressing a
// single slave. The bus must perform write+repeated-start+read when Tx is
// given both buffers. GPIO pulsing is not available through this path.
func FromI2C(bus drivers.I2C, addr uint16) Transport {
	return &i2cTransport{bus: bus, addr: addr}
}

type i2cTransport struct {
	bus  drivers.I2C
	addr uint16
}

func (t *i2cTransport) Write(p []byte) error       { return t.bus.Tx(t.addr, p, nil) }
func (t *i2cTransport) Read(p []byte) error        { return t.bus.Tx(t.addr, nil, p) }
func (t *i2cTransport) Exchange(w, r []byte) error { return t.bus.Tx(t.addr, w, r) }

func (t *i2cTransport) PulseGPIO(int, time.Duration) error { return ErrGPIOUnsupported }
