package baseband

// On-screen display geometry. The display memory holds one byte per
// character cell; bit 7 selects inverse video.
const (
	OSDColumns = 40
	OSDRows    = 16

	// DisplaySize is the size of one display frame in bytes.
	DisplaySize = OSDColumns * OSDRows
)

// EncodeFrame renders text into a display frame. The input may contain
// literal two-character escapes: "\n" breaks to the next row (a real
// newline does too), "\i" turns inverse video on, "\u" turns it off and
// "\0" emits an empty cell. Inverse video resets at every row break.
// Rows past the last and characters past the row width are dropped.
func EncodeFrame(text string) [DisplaySize]byte {
	var frame [DisplaySize]byte
	row, col := 0, 0
	inverse := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) {
			switch text[i+1] {
			case 'n':
				row, col, inverse = row+1, 0, 0
				i++
				continue
			case 'i':
				inverse = 0x80
				i++
				continue
			case 'u':
				inverse = 0
				i++
				continue
			case '0':
				if row < OSDRows && col < OSDColumns {
					frame[row*OSDColumns+col] = 0
					col++
				}
				i++
				continue
			}
		}
		if c == '\n' {
			row, col, inverse = row+1, 0, 0
			continue
		}
		if row >= OSDRows || col >= OSDColumns {
			continue
		}
		frame[row*OSDColumns+col] = c | inverse
		col++
	}
	return frame
}

// DecodeFrame converts a display frame back to text rows. Printable ASCII
// cells map to their character, everything else (empty and inverse cells)
// to a space.
func DecodeFrame(frame []byte) ([OSDRows]string, error) {
	var rows [OSDRows]string
	if len(frame) != DisplaySize {
		return rows, &LayoutError{What: "display frame", Got: len(frame), Want: DisplaySize}
	}
	line := make([]byte, OSDColumns)
	for r := 0; r < OSDRows; r++ {
		for c := 0; c < OSDColumns; c++ {
			ch := frame[r*OSDColumns+c]
			if ch >= 0x20 && ch < 0x7F {
				line[c] = ch
			} else {
				line[c] = ' '
			}
		}
		rows[r] = string(line)
	}
	return rows, nil
}

// WriteOSD renders text with EncodeFrame and writes it to the display
// memory.
func (d *Device) WriteOSD(text string) error {
	frame := EncodeFrame(text)
	return d.writeRegion(regionDisplay, 0, frame[:])
}

// ReadOSD reads the display memory back as text rows.
func (d *Device) ReadOSD() ([OSDRows]string, error) {
	buf := make([]byte, DisplaySize)
	if err := d.readRegion(regionDisplay, 0, buf); err != nil {
		return [OSDRows]string{}, err
	}
	return DecodeFrame(buf)
}

// WriteDisplay writes a raw display frame.
func (d *Device) WriteDisplay(frame []byte) error {
	if len(frame) != DisplaySize {
		return &LayoutError{What: "display frame", Got: len(frame), Want: DisplaySize}
	}
	return d.writeRegion(regionDisplay, 0, frame)
}

// ReadDisplay reads the raw display frame.
func (d *Device) ReadDisplay() ([]byte, error) {
	buf := make([]byte, DisplaySize)
	if err := d.readRegion(regionDisplay, 0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
