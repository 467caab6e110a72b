package transport

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeBus)(nil)

// fakeBus records the last Tx and answers read phases from a scripted
// reply.
type fakeBus struct {
	addr  uint16
	w     []byte
	reads int
	reply []byte
	err   error
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.addr = addr
	f.w = append([]byte(nil), w...)
	if len(r) > 0 {
		f.reads++
		copy(r, f.reply)
	}
	return f.err
}

func TestFromI2CWrite(t *testing.T) {
	f := &fakeBus{}
	tr := FromI2C(f, 0x58)

	if err := tr.Write([]byte{0x10, 0x00, 0xAA}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if f.addr != 0x58 || !bytes.Equal(f.w, []byte{0x10, 0x00, 0xAA}) {
		t.Fatalf("bus saw addr %#x, w % X", f.addr, f.w)
	}
	if f.reads != 0 {
		t.Fatal("bare write triggered a read phase")
	}
}

func TestFromI2CRead(t *testing.T) {
	f := &fakeBus{reply: []byte{9, 8}}
	tr := FromI2C(f, 0x58)

	r := make([]byte, 2)
	if err := tr.Read(r); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.w) != 0 || !bytes.Equal(r, []byte{9, 8}) {
		t.Fatalf("w % X, r % X", f.w, r)
	}
}

func TestFromI2CExchange(t *testing.T) {
	f := &fakeBus{reply: []byte{1, 2, 3, 4}}
	tr := FromI2C(f, 0x58)

	r := make([]byte, 4)
	if err := tr.Exchange([]byte{0x20, 0x00}, r); err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if !bytes.Equal(f.w, []byte{0x20, 0x00}) || !bytes.Equal(r, []byte{1, 2, 3, 4}) {
		t.Fatalf("w % X, r % X", f.w, r)
	}
	if f.reads != 1 {
		t.Fatalf("reads = %d, want one combined transaction", f.reads)
	}
}

func TestFromI2CErrorPassThrough(t *testing.T) {
	f := &fakeBus{err: errors.New("bus stuck")}
	tr := FromI2C(f, 0x58)

	if err := tr.Write([]byte{1}); err == nil {
		t.Fatal("bus error swallowed")
	}
}

func TestFromI2CNoGPIO(t *testing.T) {
	tr := FromI2C(&fakeBus{}, 0x58)
	if err := tr.PulseGPIO(0, time.Millisecond); !errors.Is(err, ErrGPIOUnsupported) {
		t.Fatalf("err = %v, want ErrGPIOUnsupported", err)
	}
}
