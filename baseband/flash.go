package baseband

import (
	"fmt"

	"github.com/pe1obw/baseband-config/x/mathx"
)

// Geometry of the on-board M25P80 configuration NOR. The lower half holds
// the factory FPGA bitstream; field upgrades go in the upper half, which
// the bootloader copies on the next start.
const (
	FlashSize         = 0x100000 // 1 MiB
	FlashSectorSize   = 0x10000  // 64 KiB erase unit
	FlashPageSize     = 256      // program unit
	FlashUpgradeStart = 0x080000 // upgrade image region, inclusive
	FlashUpgradeEnd   = 0x0FFFFF // upgrade image region, inclusive

	// MinFirmwareSize rejects truncated images before anything is erased;
	// a real bitstream for this FPGA always exceeds it.
	MinFirmwareSize = 400000

	flashReadBlock = 1024
)

// M25P80 command set.
const (
	opWriteEnable  = 0x06
	opWriteDisable = 0x04
	opReadID       = 0x9F
	opReadStatus   = 0x05
	opWriteStatus  = 0x01
	opRead         = 0x03
	opPageProgram  = 0x02
	opSectorErase  = 0xD8
	opBulkErase    = 0xC7 // refused: it would take the factory bitstream with it

	statusWriteInProgress = 0x01
)

// FlashOp identifies the phase a Progress callback reports on.
type FlashOp uint8

const (
	FlashErase FlashOp = iota
	FlashProgram
	FlashRead
)

func (op FlashOp) String() string {
	switch op {
	case FlashErase:
		return "erase"
	case FlashProgram:
		return "program"
	case FlashRead:
		return "read"
	}
	return "unknown"
}

// Progress receives completion updates during long flash operations: the
// address just processed and the done/total counts for the phase, in
// sectors for erase and bytes for program and read.
type Progress func(op FlashOp, addr uint32, done, total int)

// Flash accesses the configuration NOR through the board's SPI tunnel.
type Flash struct {
	dev *Device

	// Progress, when non-nil, is called with coarse completion updates.
	Progress Progress
}

// NewFlash returns a Flash working through d.
func NewFlash(d *Device) *Flash {
	return &Flash{dev: d}
}

func (f *Flash) report(op FlashOp, addr uint32, done, total int) {
	if f.Progress != nil {
		f.Progress(op, addr, done, total)
	}
}

// spi runs one SPI transaction through the register tunnel. The low bits
// of the I2C register address carry the SPI transfer length: one opcode
// byte, three address bytes for the opcodes that take one, the data
// written and the bytes read back. Destructive opcodes are checked here,
// before anything reaches the bus.
func (f *Flash) spi(op byte, addr uint32, out []byte, nRead int) ([]byte, error) {
	if op == opBulkErase {
		return nil, ErrBulkEraseRefused
	}
	addressed := op == opRead || op == opPageProgram || op == opSectorErase
	if addressed {
		if addr >= FlashSize {
			return nil, fmt.Errorf("%w: 0x%06X", ErrFlashAddress, addr)
		}
		if (op == opPageProgram || op == opSectorErase) &&
			!mathx.Between(addr, FlashUpgradeStart, FlashUpgradeEnd) {
			return nil, fmt.Errorf("%w: 0x%06X", ErrOutsideUpgradeRegion, addr)
		}
	}

	n := 1 + len(out) + nRead
	if addressed {
		n += 3
	}
	i2cAddr := uint16(regionFlash + n)
	frame := make([]byte, 0, 3+3+len(out))
	frame = append(frame, byte(i2cAddr>>8), byte(i2cAddr), op)
	if addressed {
		frame = append(frame, byte(addr>>16), byte(addr>>8), byte(addr))
	}
	if nRead > 0 {
		r := make([]byte, nRead)
		if err := f.dev.t.Exchange(frame, r); err != nil {
			return nil, fmt.Errorf("baseband: flash op 0x%02X: %w", op, err)
		}
		return r, nil
	}
	if err := f.dev.t.Write(append(frame, out...)); err != nil {
		return nil, fmt.Errorf("baseband: flash op 0x%02X: %w", op, err)
	}
	return nil, nil
}

// waitIdle polls the status register until the write-in-progress bit
// clears. The poll itself paces the bus, so there is no sleep: page
// programs finish in well under a millisecond, sector erases in a few
// seconds.
func (f *Flash) waitIdle() error {
	for {
		st, err := f.spi(opReadStatus, 0, nil, 1)
		if err != nil {
			return err
		}
		if st[0]&statusWriteInProgress == 0 {
			return nil
		}
	}
}

// ID reads the three JEDEC identification bytes (manufacturer, memory
// type, capacity). The M25P80 answers 20 20 14.
func (f *Flash) ID() ([3]byte, error) {
	var id [3]byte
	r, err := f.spi(opReadID, 0, nil, 3)
	if err != nil {
		return id, err
	}
	copy(id[:], r)
	return id, nil
}

// EraseRegion erases every sector from start up to but not including end.
// start must be sector-aligned; the region to erase must lie inside the
// upgrade half of the flash.
func (f *Flash) EraseRegion(start, end uint32) error {
	sectors := int(mathx.CeilDiv(end-start, FlashSectorSize))
	done := 0
	for addr := start; addr < end; addr += FlashSectorSize {
		if _, err := f.spi(opWriteEnable, 0, nil, 0); err != nil {
			return err
		}
		if _, err := f.spi(opSectorErase, addr, nil, 0); err != nil {
			return err
		}
		if err := f.waitIdle(); err != nil {
			return err
		}
		done++
		f.report(FlashErase, addr, done, sectors)
	}
	return nil
}

// WriteRegion programs data at start, split into page-sized chunks that
// never cross a page boundary. Progress is reported every 16 KiB.
func (f *Flash) WriteRegion(start uint32, data []byte) error {
	total := len(data)
	for done := 0; done < total; {
		addr := start + uint32(done)
		chunk := mathx.Min(FlashPageSize-int(addr%FlashPageSize), total-done)
		if _, err := f.spi(opWriteEnable, 0, nil, 0); err != nil {
			return err
		}
		if _, err := f.spi(opPageProgram, addr, data[done:done+chunk], 0); err != nil {
			return err
		}
		if err := f.waitIdle(); err != nil {
			return err
		}
		done += chunk
		if addr&0x3FFF == 0 || done == total {
			f.report(FlashProgram, addr, done, total)
		}
	}
	return nil
}

// ReadRegion reads length bytes starting at start, in 1 KiB blocks.
// Progress is reported every 64 KiB.
func (f *Flash) ReadRegion(start uint32, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	for done := 0; done < length; {
		addr := start + uint32(done)
		chunk := mathx.Min(flashReadBlock, length-done)
		r, err := f.spi(opRead, addr, nil, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
		done += chunk
		if addr&0xFFFF == 0 || done == length {
			f.report(FlashRead, addr, done, length)
		}
	}
	return out, nil
}

// WriteFirmware erases the upgrade region and programs image into it. The
// image length must be plausible for a bitstream build: larger than
// MinFirmwareSize and strictly smaller than the upgrade region. The size
// check runs before the erase, so a bad image leaves the flash untouched.
func (f *Flash) WriteFirmware(image []byte) error {
	if len(image) <= MinFirmwareSize || len(image) >= FlashUpgradeEnd-FlashUpgradeStart {
		return &FirmwareSizeError{Size: len(image)}
	}
	if err := f.EraseRegion(FlashUpgradeStart, FlashUpgradeEnd); err != nil {
		return err
	}
	return f.WriteRegion(FlashUpgradeStart, image)
}

// ReadFirmware reads back the whole upgrade region.
func (f *Flash) ReadFirmware() ([]byte, error) {
	return f.ReadRegion(FlashUpgradeStart, FlashUpgradeEnd-FlashUpgradeStart+1)
}
