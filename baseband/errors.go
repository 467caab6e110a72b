package baseband

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Flash guardrails, checked before any byte reaches the bus.
var (
	ErrBulkEraseRefused     = errors.New("baseband: bulk erase refused")
	ErrOutsideUpgradeRegion = errors.New("baseband: program/erase outside the upgrade region")
	ErrFlashAddress         = errors.New("baseband: flash address out of range")
)

// LayoutError reports a buffer whose size does not match the packed layout
// the firmware was compiled with. Not recoverable locally: it signals a
// protocol revision mismatch between host and device.
type LayoutError struct {
	What string
	Got  int
	Want int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("baseband: %s layout mismatch: got %d bytes, want %d", e.What, e.Got, e.Want)
}

// UnknownFieldError reports a settings path with a segment that matches no
// structure member.
type UnknownFieldError struct {
	Path string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("baseband: unknown field %q", e.Path)
}

// InvalidEnumValueError reports a symbolic value that is not a member of the
// field's enumeration.
type InvalidEnumValueError struct {
	Path  string
	Value string
	Valid []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("baseband: invalid value %q for %s (valid: %s)",
		e.Value, e.Path, strings.Join(e.Valid, ", "))
}

// ValueOutOfRangeError reports a numeric value that does not fit the field's
// wire width or enumeration range.
type ValueOutOfRangeError struct {
	Path  string
	Value uint64
	Max   uint64
}

func (e *ValueOutOfRangeError) Error() string {
	return fmt.Sprintf("baseband: value %d out of range for %s (max %d)", e.Value, e.Path, e.Max)
}

// InvalidPresetError reports a preset number outside 1..31.
type InvalidPresetError struct {
	Slot int
}

func (e *InvalidPresetError) Error() string {
	return fmt.Sprintf("baseband: invalid preset number %d (valid 1..31)", e.Slot)
}

// RegionError reports an access that would run outside its register region.
type RegionError struct {
	Region string
	Offset int
	Length int
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("baseband: access outside %s region (offset %d, %d bytes)", e.Region, e.Offset, e.Length)
}

// CommandTimeoutError reports a command whose status byte never cleared
// within the configured deadline. No partial state may be assumed committed.
type CommandTimeoutError struct {
	Command byte
	Elapsed time.Duration
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("baseband: command 0x%02X still busy after %s", e.Command, e.Elapsed.Round(time.Millisecond))
}

// FirmwareSizeError reports an image that cannot be a valid firmware build:
// either truncated or too large for the upgrade region.
type FirmwareSizeError struct {
	Size int
}

func (e *FirmwareSizeError) Error() string {
	return fmt.Sprintf("baseband: firmware image of %d bytes outside valid range %d..%d bytes",
		e.Size, MinFirmwareSize+1, FlashUpgradeEnd-FlashUpgradeStart-1)
}
