package baseband

import (
	"encoding"
	"fmt"
)

// InfoSize is the size of the packed version block.
const InfoSize = 4

// Info holds the hardware and firmware version bytes.
type Info struct {
	HWVersion      uint8
	FPGAVersion    uint8
	SWVersionMinor uint8
	SWVersionMajor uint8
}

var _ encoding.BinaryUnmarshaler = (*Info)(nil)

func (n *Info) UnmarshalBinary(data []byte) error {
	if len(data) != InfoSize {
		return &LayoutError{What: "info block", Got: len(data), Want: InfoSize}
	}
	n.HWVersion = data[0]
	n.FPGAVersion = data[1]
	n.SWVersionMinor = data[2]
	n.SWVersionMajor = data[3]
	return nil
}

// SWVersion returns the firmware version as "major.minor".
func (n *Info) SWVersion() string {
	return fmt.Sprintf("%d.%d", n.SWVersionMajor, n.SWVersionMinor)
}

// BootloaderOnly reports whether the board is running the bootloader
// without an application image (firmware version 0.0).
func (n *Info) BootloaderOnly() bool {
	return n.SWVersionMajor == 0 && n.SWVersionMinor == 0
}

// Info reads the version block from the board.
func (d *Device) Info() (Info, error) {
	buf := make([]byte, InfoSize)
	if err := d.readRegion(regionInfo, 0, buf); err != nil {
		return Info{}, err
	}
	var n Info
	if err := n.UnmarshalBinary(buf); err != nil {
		return Info{}, err
	}
	return n, nil
}
