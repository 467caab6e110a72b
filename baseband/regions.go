package baseband

// Address is the 7-bit I2C slave address of the board (0xB0 on the wire).
const Address = 0x58

// Region base addresses. Every register access is framed as the 16-bit
// big-endian address (base + offset) followed by the payload bytes. The
// address auto-increments during a transfer except in the command region.
const (
	regionDisplay      = 0x0000 // R/W, 40x16 OSD character cells
	regionFont         = 0x0800 // R/W, 128 glyphs of 16 bytes each
	regionSettings     = 0x1000 // R/W, packed Settings image
	regionReadout      = 0x2000 // RO, packed Actuals image
	regionCommand      = 0x3000 // command id in the low address byte; read returns status, no auto-increment
	regionPreview      = 0x4000 // RO, Settings shadow loaded by view-preset
	regionPresetStatus = 0x5000 // RO, 32-bit preset occupancy bitmap
	regionInfo         = 0x6000 // RO, hardware/firmware version bytes
	regionFlash        = 0x7000 // R/W, SPI-NOR tunnel; low address bits carry the transfer length
	regionPattern      = 0x8000 // R/W, pattern generator memory
	regionIORegs       = 0xA000 // R/W, raw hardware register image
)

// Fixed payload sizes of the memory-like regions.
const (
	FontSize    = 2048
	PatternSize = 8192
)

// Command identifiers. A command is issued by writing the region high byte,
// the command id as the low address byte, and one parameter byte.
const (
	cmdUpdateSettings = 0x00 // apply the settings image to the hardware
	cmdReadPreset     = 0x01 // load preset <param> and activate it
	cmdStorePreset    = 0x02 // store the live settings in preset <param>
	cmdErasePreset    = 0x03 // erase preset <param>
	cmdViewPreset     = 0x04 // copy preset <param> to the preview region
	cmdReboot         = 0x05 // reboot the board after a 500 ms delay
	cmdSetDefault     = 0x06 // reset the live settings to factory defaults
)

// regionSpan returns the addressable byte count of a region, or 0 when the
// region has no fixed bound (I/O registers).
func regionSpan(base uint16) int {
	switch base {
	case regionDisplay:
		return DisplaySize
	case regionFont:
		return FontSize
	case regionSettings, regionPreview:
		return SettingsSize
	case regionReadout:
		return ActualsSize
	case regionPresetStatus:
		return 4
	case regionInfo:
		return InfoSize
	case regionPattern:
		return PatternSize
	default:
		return 0
	}
}

func regionName(base uint16) string {
	switch base {
	case regionDisplay:
		return "display"
	case regionFont:
		return "font"
	case regionSettings:
		return "settings"
	case regionReadout:
		return "readout"
	case regionCommand:
		return "command"
	case regionPreview:
		return "preview"
	case regionPresetStatus:
		return "preset status"
	case regionInfo:
		return "info"
	case regionFlash:
		return "flash"
	case regionPattern:
		return "pattern"
	case regionIORegs:
		return "i/o registers"
	default:
		return "unknown"
	}
}
