package baseband

import "fmt"

// Settings mirrors the board's packed configuration image: four FM/AM
// carriers, the NICAM-728 stereo carrier, the video path and the general
// block (audio test generator, morse beacon). JSON tags follow the on-device
// field names so files exchange cleanly with other tooling.
type Settings struct {
	Name    string          `json:"name"`
	FM      [4]FMSettings   `json:"fm"`
	Nicam   NicamSettings   `json:"nicam"`
	Video   VideoSettings   `json:"video"`
	General GeneralSettings `json:"general"`
}

// FMSettings configures one FM/AM sound carrier. AM is honoured on carriers
// 0..1 only; the hardware has no AM path on the other two.
type FMSettings struct {
	RFFrequencyKHz uint16      `json:"rf_frequency_khz"`
	RFLevel        uint16      `json:"rf_level"`
	Input          AudioInput  `json:"input"`
	Preemphasis    Preemphasis `json:"preemphasis"`
	Bandwidth      FMBandwidth `json:"fm_bandwidth"`
	GeneratorEna   uint8       `json:"generator_ena"`
	GeneratorLevel uint8       `json:"generator_level"` // 0..15, 6 dB steps down from full scale
	AM             uint8       `json:"am"`
	Enable         uint8       `json:"enable"`
}

// NicamSettings configures the NICAM-728 digital stereo carrier.
type NicamSettings struct {
	RFFrequencyKHz    uint16         `json:"rf_frequency_khz"`
	RFLevel           uint16         `json:"rf_level"`
	InputCh1          AudioInput     `json:"input_ch1"`
	InputCh2          AudioInput     `json:"input_ch2"`
	GeneratorLevelCh1 uint8          `json:"generator_level_ch1"`
	GeneratorLevelCh2 uint8          `json:"generator_level_ch2"`
	GeneratorEnaCh1   uint8          `json:"generator_ena_ch1"`
	GeneratorEnaCh2   uint8          `json:"generator_ena_ch2"`
	Bandwidth         NicamBandwidth `json:"nicam_bandwidth"`
	Enable            uint8          `json:"enable"`
	InvertSpectrum    uint8          `json:"invert_spectrum"`
}

// VideoSettings configures the video path and the on-screen display.
type VideoSettings struct {
	VideoLevel    uint8     `json:"video_level"`
	VideoMode     VideoMode `json:"video_mode"`
	InvertVideo   uint8     `json:"invert_video"`
	OSDMode       OSDMode   `json:"osd_mode"`
	VideoIn       VideoIn   `json:"video_in"`
	FilterBypass  uint8     `json:"filter_bypass"`
	ShowMenu      uint8     `json:"show_menu"`
	PatternEnable uint8     `json:"pattern_enable"`
	Enable        uint8     `json:"enable"`
}

// GeneralSettings holds the audio test generator, the morse beacon and
// bookkeeping bytes.
type GeneralSettings struct {
	MorseMessage           string   `json:"morse_message"`
	AudioNCOFrequency      uint16   `json:"audio_nco_frequency"` // Hz, 14 bits
	Waveform               Waveform `json:"waveform"`
	AudioNCOMode           NCOMode  `json:"audio_nco_mode"`
	MorseSpeed             uint8    `json:"morse_speed"` // index into MorseSpeedLabels
	MorseMessageRepeatTime uint16   `json:"morse_message_repeat_time"` // seconds, 10 bits
	LastRecalledPreset     uint8    `json:"last_recalled_preset"`
	FreeUse                uint8    `json:"free_use"`
}

// ---------------- Enumerations ----------------

// AudioInput selects the source feeding an FM or NICAM sound channel.
type AudioInput uint8

const (
	InputADC1L AudioInput = iota
	InputADC1R
	InputADC2L
	InputADC2R
	InputI2S1L
	InputI2S1R
	InputI2S2L
	InputI2S2R
	InputADC1LR
	InputADC2LR
	InputI2S1LR
	InputI2S2LR
	InputMute
)

// Preemphasis selects the audio pre-emphasis curve of an FM carrier.
type Preemphasis uint8

const (
	Preemphasis50us Preemphasis = iota
	Preemphasis75us
	PreemphasisJ17
	PreemphasisFlat
)

// FMBandwidth selects the RF filter bandwidth of an FM carrier (kHz).
type FMBandwidth uint8

const (
	FMBandwidth130 FMBandwidth = iota
	FMBandwidth180
	FMBandwidth230
	FMBandwidth280
)

// NicamBandwidth selects the NICAM carrier bandwidth (kHz).
type NicamBandwidth uint8

const (
	NicamBandwidth700 NicamBandwidth = iota
	NicamBandwidth500
)

// VideoMode selects the video standard.
type VideoMode uint8

const (
	VideoModeFlat VideoMode = iota
	VideoModePAL
	VideoModeNTSC
	VideoModeSECAM
)

// VideoIn selects the picture source.
type VideoIn uint8

const (
	VideoInInput VideoIn = iota
	VideoInGenerator
	VideoInAuto
)

// OSDMode controls when the on-screen display is keyed into the picture.
type OSDMode uint8

const (
	OSDModeOff OSDMode = iota
	OSDModeOn
	OSDModeAuto
)

// Waveform selects the audio test generator waveform.
type Waveform uint8

const (
	WaveformSine Waveform = iota
	WaveformSquare
	WaveformNoise
)

// NCOMode switches the audio generator between continuous tone and keyed
// morse output.
type NCOMode uint8

const (
	NCOModeCW NCOMode = iota
	NCOModeMorse
)

func (a AudioInput) String() string     { return audioInputEnum.name(uint64(a)) }
func (p Preemphasis) String() string    { return preemphasisEnum.name(uint64(p)) }
func (b FMBandwidth) String() string    { return fmBandwidthEnum.name(uint64(b)) }
func (b NicamBandwidth) String() string { return nicamBandwidthEnum.name(uint64(b)) }
func (m VideoMode) String() string      { return videoModeEnum.name(uint64(m)) }
func (v VideoIn) String() string        { return videoInEnum.name(uint64(v)) }
func (m OSDMode) String() string        { return osdModeEnum.name(uint64(m)) }
func (w Waveform) String() string       { return waveformEnum.name(uint64(w)) }
func (m NCOMode) String() string        { return ncoModeEnum.name(uint64(m)) }

// GeneratorLevelDB maps a 4-bit generator level code to its attenuation in
// dB relative to full scale (0 to -90 in 6 dB steps).
func GeneratorLevelDB(code uint8) int { return -6 * int(code&0x0F) }

// MorseSpeedLabels maps the 2-bit morse speed code to points per minute.
var MorseSpeedLabels = [4]string{"7.5", "15", "30", "60"}

// ---------------- Validation ----------------

// Validate checks every enum and sub-byte scalar against its wire width
// before the structure is packed. Text fields are not checked; they truncate.
func (s *Settings) Validate() error {
	for i := range s.FM {
		f := &s.FM[i]
		p := func(field string) string { return fmt.Sprintf("fm.%d.%s", i, field) }
		if err := checkMax(p("input"), uint64(f.Input), audioInputEnum.max()); err != nil {
			return err
		}
		if err := checkMax(p("preemphasis"), uint64(f.Preemphasis), preemphasisEnum.max()); err != nil {
			return err
		}
		if err := checkMax(p("fm_bandwidth"), uint64(f.Bandwidth), fmBandwidthEnum.max()); err != nil {
			return err
		}
		if err := checkMax(p("generator_ena"), uint64(f.GeneratorEna), 1); err != nil {
			return err
		}
		if err := checkMax(p("generator_level"), uint64(f.GeneratorLevel), 15); err != nil {
			return err
		}
		if err := checkMax(p("am"), uint64(f.AM), 1); err != nil {
			return err
		}
		if err := checkMax(p("enable"), uint64(f.Enable), 1); err != nil {
			return err
		}
	}

	n := &s.Nicam
	if err := checkMax("nicam.input_ch1", uint64(n.InputCh1), audioInputEnum.max()); err != nil {
		return err
	}
	if err := checkMax("nicam.input_ch2", uint64(n.InputCh2), audioInputEnum.max()); err != nil {
		return err
	}
	if err := checkMax("nicam.generator_level_ch1", uint64(n.GeneratorLevelCh1), 15); err != nil {
		return err
	}
	if err := checkMax("nicam.generator_level_ch2", uint64(n.GeneratorLevelCh2), 15); err != nil {
		return err
	}
	if err := checkMax("nicam.generator_ena_ch1", uint64(n.GeneratorEnaCh1), 1); err != nil {
		return err
	}
	if err := checkMax("nicam.generator_ena_ch2", uint64(n.GeneratorEnaCh2), 1); err != nil {
		return err
	}
	if err := checkMax("nicam.nicam_bandwidth", uint64(n.Bandwidth), nicamBandwidthEnum.max()); err != nil {
		return err
	}
	if err := checkMax("nicam.enable", uint64(n.Enable), 1); err != nil {
		return err
	}
	if err := checkMax("nicam.invert_spectrum", uint64(n.InvertSpectrum), 1); err != nil {
		return err
	}

	v := &s.Video
	if err := checkMax("video.video_mode", uint64(v.VideoMode), videoModeEnum.max()); err != nil {
		return err
	}
	if err := checkMax("video.invert_video", uint64(v.InvertVideo), 1); err != nil {
		return err
	}
	if err := checkMax("video.osd_mode", uint64(v.OSDMode), osdModeEnum.max()); err != nil {
		return err
	}
	if err := checkMax("video.video_in", uint64(v.VideoIn), videoInEnum.max()); err != nil {
		return err
	}
	if err := checkMax("video.filter_bypass", uint64(v.FilterBypass), 1); err != nil {
		return err
	}
	if err := checkMax("video.show_menu", uint64(v.ShowMenu), 1); err != nil {
		return err
	}
	if err := checkMax("video.pattern_enable", uint64(v.PatternEnable), 1); err != nil {
		return err
	}
	if err := checkMax("video.enable", uint64(v.Enable), 1); err != nil {
		return err
	}

	g := &s.General
	if err := checkMax("general.audio_nco_frequency", uint64(g.AudioNCOFrequency), 1<<14-1); err != nil {
		return err
	}
	if err := checkMax("general.waveform", uint64(g.Waveform), waveformEnum.max()); err != nil {
		return err
	}
	if err := checkMax("general.audio_nco_mode", uint64(g.AudioNCOMode), ncoModeEnum.max()); err != nil {
		return err
	}
	if err := checkMax("general.morse_speed", uint64(g.MorseSpeed), 3); err != nil {
		return err
	}
	if err := checkMax("general.morse_message_repeat_time", uint64(g.MorseMessageRepeatTime), 1<<10-1); err != nil {
		return err
	}
	return nil
}

func checkMax(path string, v, max uint64) error {
	if v > max {
		return &ValueOutOfRangeError{Path: path, Value: v, Max: max}
	}
	return nil
}
