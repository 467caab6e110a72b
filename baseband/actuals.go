package baseband

import (
	"encoding"
	"encoding/binary"
	"math"

	"github.com/pe1obw/baseband-config/x/mathx"
)

// ActualsSize is the size of the packed readout block.
const ActualsSize = 36

// Full-scale references for the peak readings.
const (
	PeakFullScale   = 32768 // audio and NICAM peaks
	FMPeakFullScale = 1024  // FM modulator audio peaks
)

// Actuals is the board's live measurement block: audio peak detectors,
// clip and status flags, and the video ADC/DAC extremes.
type Actuals struct {
	ADC1LeftPeak  uint16
	ADC1RightPeak uint16
	ADC2LeftPeak  uint16
	ADC2RightPeak uint16
	FMAudioPeak   [4]uint16 // one per FM carrier

	VideoADCClip        bool
	VideoLowPassClip    bool
	VideoPreempClip     bool
	NicamUpsamplingClip bool
	BasebandClip        bool

	ADCInMin  uint16
	ADCInMax  uint16
	DACOutMin uint16
	DACOutMax uint16

	NicamReset        bool
	BasebandPLLLocked bool

	NicamLeftPeak  uint16
	NicamRightPeak uint16
}

var _ encoding.BinaryUnmarshaler = (*Actuals)(nil)

func (a *Actuals) UnmarshalBinary(data []byte) error {
	if len(data) != ActualsSize {
		return &LayoutError{What: "readout block", Got: len(data), Want: ActualsSize}
	}
	le := binary.LittleEndian
	a.ADC1LeftPeak = le.Uint16(data[0:])
	a.ADC1RightPeak = le.Uint16(data[2:])
	a.ADC2LeftPeak = le.Uint16(data[4:])
	a.ADC2RightPeak = le.Uint16(data[6:])
	for i := range a.FMAudioPeak {
		a.FMAudioPeak[i] = le.Uint16(data[8+2*i:])
	}
	clips := le.Uint32(data[16:])
	a.VideoADCClip = clips&(1<<0) != 0
	a.VideoLowPassClip = clips&(1<<1) != 0
	a.VideoPreempClip = clips&(1<<2) != 0
	a.NicamUpsamplingClip = clips&(1<<3) != 0
	a.BasebandClip = clips&(1<<4) != 0
	a.ADCInMin = le.Uint16(data[20:])
	a.ADCInMax = le.Uint16(data[22:])
	a.DACOutMin = le.Uint16(data[24:])
	a.DACOutMax = le.Uint16(data[26:])
	status := le.Uint32(data[28:])
	a.NicamReset = status&(1<<0) != 0
	a.BasebandPLLLocked = status&(1<<1) != 0
	a.NicamLeftPeak = le.Uint16(data[32:])
	a.NicamRightPeak = le.Uint16(data[34:])
	return nil
}

// PeakDB converts a peak reading to dB relative to fullScale, clamped to
// the 80 dB meter range.
func PeakDB(peak, fullScale uint16) float64 {
	db := 20 * math.Log10(float64(peak)/float64(fullScale))
	return mathx.Clamp(db, -80, 0)
}

// MeterLevel converts a peak reading to a bar fraction in [0, 1] spanning
// the 80 dB below fullScale.
func MeterLevel(peak, fullScale uint16) float64 {
	db := 20 * math.Log10(float64(peak)/float64(fullScale))
	return mathx.Clamp(db/80+1, 0, 1)
}

// ReadActuals reads the live measurement block from the board.
func (d *Device) ReadActuals() (Actuals, error) {
	buf := make([]byte, ActualsSize)
	if err := d.readRegion(regionReadout, 0, buf); err != nil {
		return Actuals{}, err
	}
	var a Actuals
	if err := a.UnmarshalBinary(buf); err != nil {
		return Actuals{}, err
	}
	return a, nil
}
