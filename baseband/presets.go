package baseband

import (
	"encoding/binary"

	"github.com/pe1obw/baseband-config/x/mathx"
)

// Preset slots 1..31 hold stored settings in the board's flash; slot 0 is
// the live configuration and is never addressed directly.
const (
	PresetMin = 1
	PresetMax = 31
)

// PresetStatus is the occupancy bitmap read from the board: bit n set
// means slot n holds a preset. Bit 0 tracks the live settings and is not
// reported as a slot.
type PresetStatus uint32

// InUse reports whether slot holds a preset.
func (ps PresetStatus) InUse(slot int) bool {
	if !mathx.Between(slot, PresetMin, PresetMax) {
		return false
	}
	return ps&(1<<slot) != 0
}

// Slots returns the occupied slot numbers in ascending order.
func (ps PresetStatus) Slots() []int {
	var slots []int
	for n := PresetMin; n <= PresetMax; n++ {
		if ps&(1<<n) != 0 {
			slots = append(slots, n)
		}
	}
	return slots
}

func checkPreset(slot int) error {
	if !mathx.Between(slot, PresetMin, PresetMax) {
		return &InvalidPresetError{Slot: slot}
	}
	return nil
}

// PresetStatus reads the occupancy bitmap.
func (d *Device) PresetStatus() (PresetStatus, error) {
	buf := make([]byte, 4)
	if err := d.readRegion(regionPresetStatus, 0, buf); err != nil {
		return 0, err
	}
	return PresetStatus(binary.LittleEndian.Uint32(buf)), nil
}

// LoadPreset activates the settings stored in slot.
func (d *Device) LoadPreset(slot int) error {
	if err := checkPreset(slot); err != nil {
		return err
	}
	return d.command(cmdReadPreset, byte(slot))
}

// StorePreset saves the live settings into slot.
func (d *Device) StorePreset(slot int) error {
	if err := checkPreset(slot); err != nil {
		return err
	}
	return d.command(cmdStorePreset, byte(slot))
}

// ErasePreset clears slot.
func (d *Device) ErasePreset(slot int) error {
	if err := checkPreset(slot); err != nil {
		return err
	}
	return d.command(cmdErasePreset, byte(slot))
}

// ViewPreset returns the settings stored in slot without activating them.
// The firmware copies the preset into the preview region, which is then
// read back and decoded.
func (d *Device) ViewPreset(slot int) (*Settings, error) {
	if err := checkPreset(slot); err != nil {
		return nil, err
	}
	if err := d.command(cmdViewPreset, byte(slot)); err != nil {
		return nil, err
	}
	buf := make([]byte, SettingsSize)
	if err := d.readRegion(regionPreview, 0, buf); err != nil {
		return nil, err
	}
	s := new(Settings)
	if err := s.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return s, nil
}
