package baseband

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeFrameInverse(t *testing.T) {
	frame := EncodeFrame(`AB\iXY\uCD`)
	want := []byte{0x41, 0x42, 0xD8, 0xD9, 0x43, 0x44}
	for i, b := range want {
		if frame[i] != b {
			t.Errorf("cell %d = %02X, want %02X", i, frame[i], b)
		}
	}
	if frame[6] != 0 {
		t.Errorf("cell 6 = %02X, want empty", frame[6])
	}
}

func TestEncodeFrameRows(t *testing.T) {
	frame := EncodeFrame(`A\nB` + "\nC")
	if frame[0] != 'A' {
		t.Errorf("row 0 = %02X", frame[0])
	}
	if frame[OSDColumns] != 'B' {
		t.Errorf("row 1 = %02X", frame[OSDColumns])
	}
	if frame[2*OSDColumns] != 'C' {
		t.Errorf("row 2 = %02X", frame[2*OSDColumns])
	}

	inv := EncodeFrame(`\iAB` + "\nCD")
	if inv[0] != 'A'|0x80 || inv[1] != 'B'|0x80 {
		t.Errorf("row 0 not inverted: %02X %02X", inv[0], inv[1])
	}
	if inv[OSDColumns] != 'C' {
		t.Errorf("inverse leaked into row 1: %02X", inv[OSDColumns])
	}
}

func TestEncodeFrameNulCell(t *testing.T) {
	frame := EncodeFrame(`A\0B`)
	if frame[0] != 'A' || frame[1] != 0 || frame[2] != 'B' {
		t.Fatalf("cells = %02X %02X %02X", frame[0], frame[1], frame[2])
	}
}

func TestEncodeFrameClipping(t *testing.T) {
	longRow := strings.Repeat("x", OSDColumns+10) + "\nY"
	frame := EncodeFrame(longRow)
	for c := 0; c < OSDColumns; c++ {
		if frame[c] != 'x' {
			t.Fatalf("cell %d = %02X", c, frame[c])
		}
	}
	if frame[OSDColumns] != 'Y' {
		t.Fatalf("overflow shifted the next row: %02X", frame[OSDColumns])
	}

	tall := strings.Repeat("r\n", OSDRows+5)
	frame = EncodeFrame(tall)
	for r := 0; r < OSDRows; r++ {
		if frame[r*OSDColumns] != 'r' {
			t.Fatalf("row %d = %02X", r, frame[r*OSDColumns])
		}
	}
}

func TestDecodeFrame(t *testing.T) {
	var buf [DisplaySize]byte
	copy(buf[:], "Hi")
	buf[2] = 'A' | 0x80 // inverse cells have no printable mapping
	buf[3] = 0x07       // neither do control bytes

	rows, err := DecodeFrame(buf[:])
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if !strings.HasPrefix(rows[0], "Hi  ") {
		t.Fatalf("row 0 = %q", rows[0])
	}
	if len(rows[0]) != OSDColumns {
		t.Fatalf("row width = %d", len(rows[0]))
	}

	var lerr *LayoutError
	if _, err := DecodeFrame(buf[:100]); !errors.As(err, &lerr) {
		t.Fatalf("short frame: err = %v, want LayoutError", err)
	}
}

func TestWriteReadOSD(t *testing.T) {
	f := newFakeBoard()
	d := New(f, fastConfig())

	if err := d.WriteOSD(`\iBASEBAND\u ready`); err != nil {
		t.Fatalf("WriteOSD: %v", err)
	}
	if f.display[0] != 'B'|0x80 || f.display[8] != ' ' {
		t.Fatalf("display = % X", f.display[:12])
	}

	rows, err := d.ReadOSD()
	if err != nil {
		t.Fatalf("ReadOSD: %v", err)
	}
	// Inverse cells decode as spaces: 8 for BASEBAND, then " ready".
	if !strings.HasPrefix(rows[0], strings.Repeat(" ", 9)+"ready") {
		t.Fatalf("row 0 = %q", rows[0])
	}
}
