package baseband

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pe1obw/baseband-config/transport"
)

// Compile-time check.
var _ transport.Transport = (*fakeFlash)(nil)

// spiOp is one decoded tunnel transaction.
type spiOp struct {
	op   byte
	i2c  uint16 // register address carrying the transfer length
	addr uint32
	n    int  // data bytes programmed or read
	wren bool // write latch state when the op arrived
}

// fakeFlash scripts the SPI tunnel: it verifies the length-in-address
// framing, keeps an M25P80-like memory image with a write latch, and
// logs the decoded operations.
type fakeFlash struct {
	mem      []byte
	wel      bool
	wipPolls int // busy statuses reported after each program/erase
	busy     int
	rdsr     int // status register reads seen
	ops      []spiOp
}

func newFakeFlash() *fakeFlash {
	mem := make([]byte, FlashSize)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &fakeFlash{mem: mem}
}

func (f *fakeFlash) opsOf(op byte) []spiOp {
	var out []spiOp
	for _, o := range f.ops {
		if o.op == op {
			out = append(out, o)
		}
	}
	return out
}

func addr24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func (f *fakeFlash) Exchange(w, r []byte) error {
	if len(w) < 3 {
		return fmt.Errorf("fake flash: short frame % X", w)
	}
	i2cAddr := uint16(w[0])<<8 | uint16(w[1])
	op := w[2]
	if n := int(i2cAddr) - regionFlash; n != len(w)-2+len(r) {
		return fmt.Errorf("fake flash: frame says %d bytes, op tunnels %d", n, len(w)-2+len(r))
	}
	switch op {
	case opReadStatus:
		f.rdsr++
		if f.busy > 0 {
			f.busy--
			r[0] = statusWriteInProgress
		} else {
			r[0] = 0
		}
		return nil
	case opReadID:
		f.ops = append(f.ops, spiOp{op: op, i2c: i2cAddr, n: len(r)})
		copy(r, []byte{0x20, 0x20, 0x14})
		return nil
	case opRead:
		a := addr24(w[3:])
		f.ops = append(f.ops, spiOp{op: op, i2c: i2cAddr, addr: a, n: len(r)})
		copy(r, f.mem[a:])
		return nil
	}
	return fmt.Errorf("fake flash: unexpected read op %02X", op)
}

func (f *fakeFlash) Write(p []byte) error {
	if len(p) < 3 {
		return fmt.Errorf("fake flash: short frame % X", p)
	}
	i2cAddr := uint16(p[0])<<8 | uint16(p[1])
	op := p[2]
	if n := int(i2cAddr) - regionFlash; n != len(p)-2 {
		return fmt.Errorf("fake flash: frame says %d bytes, op tunnels %d", n, len(p)-2)
	}
	switch op {
	case opWriteEnable:
		f.wel = true
		f.ops = append(f.ops, spiOp{op: op, i2c: i2cAddr})
		return nil
	case opPageProgram:
		a := addr24(p[3:6])
		data := p[6:]
		f.ops = append(f.ops, spiOp{op: op, i2c: i2cAddr, addr: a, n: len(data), wren: f.wel})
		if f.wel {
			for i, b := range data {
				f.mem[a+uint32(i)] &= b // programming only clears bits
			}
		}
		f.wel = false
		f.busy = f.wipPolls
		return nil
	case opSectorErase:
		a := addr24(p[3:6])
		f.ops = append(f.ops, spiOp{op: op, i2c: i2cAddr, addr: a, wren: f.wel})
		if f.wel {
			base := a &^ uint32(FlashSectorSize-1)
			for i := base; i < base+FlashSectorSize; i++ {
				f.mem[i] = 0xFF
			}
		}
		f.wel = false
		f.busy = f.wipPolls
		return nil
	}
	return fmt.Errorf("fake flash: unexpected write op %02X", op)
}

func (f *fakeFlash) Read(p []byte) error {
	return errors.New("fake flash: bare read not part of the protocol")
}

func (f *fakeFlash) PulseGPIO(pin int, d time.Duration) error {
	return transport.ErrGPIOUnsupported
}

func newTestFlash(f *fakeFlash) *Flash {
	return NewFlash(New(f, fastConfig()))
}

func TestEraseRegionSectors(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	type report struct{ addr, done, total int }
	var reports []report
	fl.Progress = func(op FlashOp, addr uint32, done, total int) {
		if op != FlashErase {
			t.Errorf("unexpected phase %v", op)
		}
		reports = append(reports, report{int(addr), done, total})
	}

	if err := fl.EraseRegion(0x080000, 0x0A0000); err != nil {
		t.Fatalf("EraseRegion: %v", err)
	}
	se := f.opsOf(opSectorErase)
	if len(se) != 2 {
		t.Fatalf("%d sector erases, want 2", len(se))
	}
	if se[0].addr != 0x080000 || se[1].addr != 0x090000 {
		t.Fatalf("erase addresses %06X %06X", se[0].addr, se[1].addr)
	}
	for i, op := range se {
		if !op.wren {
			t.Errorf("erase %d without preceding write enable", i)
		}
	}
	want := []report{{0x080000, 1, 2}, {0x090000, 2, 2}}
	if len(reports) != 2 || reports[0] != want[0] || reports[1] != want[1] {
		t.Fatalf("progress = %v, want %v", reports, want)
	}
}

func TestWriteRegionPageChunks(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i * 3)
	}
	if err := fl.WriteRegion(FlashUpgradeStart, data); err != nil {
		t.Fatalf("WriteRegion: %v", err)
	}
	pp := f.opsOf(opPageProgram)
	if len(pp) != 2 {
		t.Fatalf("%d page programs, want 2", len(pp))
	}
	if pp[0].addr != FlashUpgradeStart || pp[0].n != 256 || !pp[0].wren {
		t.Fatalf("first program = %+v", pp[0])
	}
	if pp[1].addr != FlashUpgradeStart+256 || pp[1].n != 44 || !pp[1].wren {
		t.Fatalf("second program = %+v", pp[1])
	}
	if !bytes.Equal(f.mem[FlashUpgradeStart:FlashUpgradeStart+300], data) {
		t.Fatal("programmed image differs")
	}
}

func TestWriteRegionUnalignedStart(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	start := uint32(FlashUpgradeStart + 240)
	if err := fl.WriteRegion(start, make([]byte, 100)); err != nil {
		t.Fatalf("WriteRegion: %v", err)
	}
	pp := f.opsOf(opPageProgram)
	if len(pp) != 2 || pp[0].n != 16 || pp[1].n != 84 {
		t.Fatalf("chunking = %+v, want 16 then 84", pp)
	}
	if pp[1].addr != FlashUpgradeStart+256 {
		t.Fatalf("second chunk at %06X, want the page boundary", pp[1].addr)
	}
}

func TestProgramOutsideUpgradeRegion(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	err := fl.WriteRegion(0x010000, []byte{1, 2, 3})
	if !errors.Is(err, ErrOutsideUpgradeRegion) {
		t.Fatalf("err = %v, want ErrOutsideUpgradeRegion", err)
	}
	if pp := f.opsOf(opPageProgram); len(pp) != 0 {
		t.Fatalf("program reached the bus: %+v", pp)
	}

	err = fl.EraseRegion(0, FlashSectorSize)
	if !errors.Is(err, ErrOutsideUpgradeRegion) {
		t.Fatalf("erase err = %v, want ErrOutsideUpgradeRegion", err)
	}
	if se := f.opsOf(opSectorErase); len(se) != 0 {
		t.Fatalf("erase reached the bus: %+v", se)
	}
}

func TestFlashGuards(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	if _, err := fl.spi(opBulkErase, 0, nil, 0); !errors.Is(err, ErrBulkEraseRefused) {
		t.Fatalf("bulk erase err = %v", err)
	}
	if _, err := fl.spi(opRead, FlashSize, nil, 4); !errors.Is(err, ErrFlashAddress) {
		t.Fatalf("address err = %v", err)
	}
	if len(f.ops) != 0 {
		t.Fatalf("guarded ops reached the bus: %+v", f.ops)
	}
}

func TestWriteFirmwareSizeGuard(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	for _, size := range []int{0, 1000, MinFirmwareSize, FlashUpgradeEnd - FlashUpgradeStart} {
		err := fl.WriteFirmware(make([]byte, size))
		var serr *FirmwareSizeError
		if !errors.As(err, &serr) {
			t.Errorf("size %d: err = %v, want FirmwareSizeError", size, err)
		}
	}
	if len(f.ops) != 0 {
		t.Fatalf("rejected images caused traffic: %d ops", len(f.ops))
	}
}

func TestWriteFirmwareFlow(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	var lastProgram [2]int
	fl.Progress = func(op FlashOp, addr uint32, done, total int) {
		if op == FlashProgram {
			lastProgram = [2]int{done, total}
		}
	}

	image := make([]byte, MinFirmwareSize+1)
	for i := range image {
		image[i] = byte(i>>8) ^ byte(i)
	}
	if err := fl.WriteFirmware(image); err != nil {
		t.Fatalf("WriteFirmware: %v", err)
	}

	se := f.opsOf(opSectorErase)
	if len(se) != 8 {
		t.Fatalf("%d sector erases, want 8 (the whole upgrade half)", len(se))
	}
	for i, op := range se {
		if want := uint32(FlashUpgradeStart + i*FlashSectorSize); op.addr != want {
			t.Errorf("erase %d at %06X, want %06X", i, op.addr, want)
		}
	}
	if !bytes.Equal(f.mem[FlashUpgradeStart:FlashUpgradeStart+len(image)], image) {
		t.Fatal("flash content differs from the image")
	}
	if lastProgram != [2]int{len(image), len(image)} {
		t.Fatalf("final progress = %v, want done == total", lastProgram)
	}
}

func TestReadFirmware(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	for i := FlashUpgradeStart; i <= FlashUpgradeEnd; i++ {
		f.mem[i] = byte(i >> 4)
	}
	img, err := fl.ReadFirmware()
	if err != nil {
		t.Fatalf("ReadFirmware: %v", err)
	}
	if len(img) != FlashUpgradeEnd-FlashUpgradeStart+1 {
		t.Fatalf("image size = %d", len(img))
	}
	if !bytes.Equal(img, f.mem[FlashUpgradeStart:FlashUpgradeEnd+1]) {
		t.Fatal("readback differs")
	}
	reads := f.opsOf(opRead)
	if len(reads) != len(img)/flashReadBlock {
		t.Fatalf("%d read blocks, want %d", len(reads), len(img)/flashReadBlock)
	}
	if reads[0].addr != FlashUpgradeStart || reads[0].n != flashReadBlock {
		t.Fatalf("first read = %+v", reads[0])
	}
}

func TestFlashIDFraming(t *testing.T) {
	f := newFakeFlash()
	fl := newTestFlash(f)

	id, err := fl.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if id != [3]byte{0x20, 0x20, 0x14} {
		t.Fatalf("id = % X", id)
	}
	// One opcode byte plus three read bytes must be encoded in the
	// register address.
	if f.ops[0].i2c != regionFlash+4 {
		t.Fatalf("frame address = %04X, want %04X", f.ops[0].i2c, regionFlash+4)
	}
}

func TestWaitIdlePollsStatus(t *testing.T) {
	f := newFakeFlash()
	f.wipPolls = 3
	fl := newTestFlash(f)

	if err := fl.WriteRegion(FlashUpgradeStart, make([]byte, 16)); err != nil {
		t.Fatalf("WriteRegion: %v", err)
	}
	// Three busy polls plus the final idle one.
	if f.rdsr != 4 {
		t.Fatalf("%d status reads, want 4", f.rdsr)
	}
}
