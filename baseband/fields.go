package baseband

import (
	"fmt"
	"strconv"
	"strings"
)

// Path-addressed field access. Every terminal settings field has a static
// descriptor (kind, wire width, optional enumeration, accessors); a small
// interpreter walks dot-separated paths like "fm.0.rf_frequency_khz" or
// "video.osd_mode" over the descriptor tables. No reflection.

type fieldKind uint8

const (
	kindScalar fieldKind = iota
	kindEnum
	kindText
)

type enumDef struct {
	names []string
}

func (e *enumDef) lookup(name string) (uint64, bool) {
	for i, n := range e.names {
		if n == name {
			return uint64(i), true
		}
	}
	return 0, false
}

func (e *enumDef) name(code uint64) string {
	if code < uint64(len(e.names)) {
		return e.names[code]
	}
	return strconv.FormatUint(code, 10)
}

func (e *enumDef) max() uint64 { return uint64(len(e.names) - 1) }

var (
	audioInputEnum = &enumDef{names: []string{
		"ADC1L", "ADC1R", "ADC2L", "ADC2R",
		"I2S1L", "I2S1R", "I2S2L", "I2S2R",
		"ADC1LR", "ADC2LR", "I2S1LR", "I2S2LR",
		"MUTE",
	}}
	preemphasisEnum    = &enumDef{names: []string{"AUDIO_50US", "AUDIO_75US", "AUDIO_J17", "AUDIO_FLAT"}}
	fmBandwidthEnum    = &enumDef{names: []string{"BW_130", "BW_180", "BW_230", "BW_280"}}
	nicamBandwidthEnum = &enumDef{names: []string{"BW_700", "BW_500"}}
	videoModeEnum      = &enumDef{names: []string{"FLAT", "PAL", "NTSC", "SECAM"}}
	videoInEnum        = &enumDef{names: []string{"VIDEO_IN", "VIDEO_GENERATOR", "VIDEO_IN_AUTO"}}
	osdModeEnum        = &enumDef{names: []string{"OSD_OFF", "OSD_ON", "OSD_AUTO"}}
	waveformEnum       = &enumDef{names: []string{"SINE", "SQUARE", "NOISE"}}
	ncoModeEnum        = &enumDef{names: []string{"NCO_CW", "NCO_MORSE"}}
)

// fieldDef describes one terminal field. Accessors for fields inside the fm
// array receive the carrier index; all others ignore it.
type fieldDef struct {
	name  string
	kind  fieldKind
	bits  uint     // scalar: wire width in bits
	width int      // text: wire width in bytes
	enum  *enumDef // enum: member table

	num     func(s *Settings, i int) uint64
	setNum  func(s *Settings, i int, v uint64)
	text    func(s *Settings, i int) string
	setText func(s *Settings, i int, v string)
}

// memberDef is one top level settings member: a terminal field, a group of
// fields, or an indexed array of groups.
type memberDef struct {
	name   string
	count  int // >0: array, next path token is the index
	field  *fieldDef
	fields []fieldDef
}

var settingsMembers = []memberDef{
	{name: "name", field: &fieldDef{
		name: "name", kind: kindText, width: nameWidth,
		text:    func(s *Settings, _ int) string { return s.Name },
		setText: func(s *Settings, _ int, v string) { s.Name = v },
	}},
	{name: "fm", count: 4, fields: fmFields},
	{name: "nicam", fields: nicamFields},
	{name: "video", fields: videoFields},
	{name: "general", fields: generalFields},
}

var fmFields = []fieldDef{
	{name: "rf_frequency_khz", kind: kindScalar, bits: 16,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].RFFrequencyKHz) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].RFFrequencyKHz = uint16(v) }},
	{name: "rf_level", kind: kindScalar, bits: 16,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].RFLevel) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].RFLevel = uint16(v) }},
	{name: "input", kind: kindEnum, enum: audioInputEnum,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].Input) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].Input = AudioInput(v) }},
	{name: "preemphasis", kind: kindEnum, enum: preemphasisEnum,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].Preemphasis) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].Preemphasis = Preemphasis(v) }},
	{name: "fm_bandwidth", kind: kindEnum, enum: fmBandwidthEnum,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].Bandwidth) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].Bandwidth = FMBandwidth(v) }},
	{name: "generator_ena", kind: kindScalar, bits: 1,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].GeneratorEna) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].GeneratorEna = uint8(v) }},
	{name: "generator_level", kind: kindScalar, bits: 4,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].GeneratorLevel) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].GeneratorLevel = uint8(v) }},
	{name: "am", kind: kindScalar, bits: 1,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].AM) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].AM = uint8(v) }},
	{name: "enable", kind: kindScalar, bits: 1,
		num:    func(s *Settings, i int) uint64 { return uint64(s.FM[i].Enable) },
		setNum: func(s *Settings, i int, v uint64) { s.FM[i].Enable = uint8(v) }},
}

var nicamFields = []fieldDef{
	{name: "rf_frequency_khz", kind: kindScalar, bits: 16,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.RFFrequencyKHz) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.RFFrequencyKHz = uint16(v) }},
	{name: "rf_level", kind: kindScalar, bits: 16,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.RFLevel) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.RFLevel = uint16(v) }},
	{name: "input_ch1", kind: kindEnum, enum: audioInputEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.InputCh1) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.InputCh1 = AudioInput(v) }},
	{name: "input_ch2", kind: kindEnum, enum: audioInputEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.InputCh2) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.InputCh2 = AudioInput(v) }},
	{name: "generator_level_ch1", kind: kindScalar, bits: 4,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.GeneratorLevelCh1) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.GeneratorLevelCh1 = uint8(v) }},
	{name: "generator_level_ch2", kind: kindScalar, bits: 4,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.GeneratorLevelCh2) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.GeneratorLevelCh2 = uint8(v) }},
	{name: "generator_ena_ch1", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.GeneratorEnaCh1) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.GeneratorEnaCh1 = uint8(v) }},
	{name: "generator_ena_ch2", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.GeneratorEnaCh2) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.GeneratorEnaCh2 = uint8(v) }},
	{name: "nicam_bandwidth", kind: kindEnum, enum: nicamBandwidthEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.Bandwidth) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.Bandwidth = NicamBandwidth(v) }},
	{name: "enable", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.Enable) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.Enable = uint8(v) }},
	{name: "invert_spectrum", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Nicam.InvertSpectrum) },
		setNum: func(s *Settings, _ int, v uint64) { s.Nicam.InvertSpectrum = uint8(v) }},
}

var videoFields = []fieldDef{
	{name: "video_level", kind: kindScalar, bits: 8,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.VideoLevel) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.VideoLevel = uint8(v) }},
	{name: "video_mode", kind: kindEnum, enum: videoModeEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.VideoMode) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.VideoMode = VideoMode(v) }},
	{name: "invert_video", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.InvertVideo) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.InvertVideo = uint8(v) }},
	{name: "osd_mode", kind: kindEnum, enum: osdModeEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.OSDMode) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.OSDMode = OSDMode(v) }},
	{name: "video_in", kind: kindEnum, enum: videoInEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.VideoIn) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.VideoIn = VideoIn(v) }},
	{name: "filter_bypass", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.FilterBypass) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.FilterBypass = uint8(v) }},
	{name: "show_menu", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.ShowMenu) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.ShowMenu = uint8(v) }},
	{name: "pattern_enable", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.PatternEnable) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.PatternEnable = uint8(v) }},
	{name: "enable", kind: kindScalar, bits: 1,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.Video.Enable) },
		setNum: func(s *Settings, _ int, v uint64) { s.Video.Enable = uint8(v) }},
}

var generalFields = []fieldDef{
	{name: "morse_message", kind: kindText, width: morseWidth,
		text:    func(s *Settings, _ int) string { return s.General.MorseMessage },
		setText: func(s *Settings, _ int, v string) { s.General.MorseMessage = v }},
	{name: "audio_nco_frequency", kind: kindScalar, bits: 14,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.AudioNCOFrequency) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.AudioNCOFrequency = uint16(v) }},
	{name: "waveform", kind: kindEnum, enum: waveformEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.Waveform) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.Waveform = Waveform(v) }},
	{name: "audio_nco_mode", kind: kindEnum, enum: ncoModeEnum,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.AudioNCOMode) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.AudioNCOMode = NCOMode(v) }},
	{name: "morse_speed", kind: kindScalar, bits: 2,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.MorseSpeed) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.MorseSpeed = uint8(v) }},
	{name: "morse_message_repeat_time", kind: kindScalar, bits: 10,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.MorseMessageRepeatTime) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.MorseMessageRepeatTime = uint16(v) }},
	{name: "last_recalled_preset", kind: kindScalar, bits: 8,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.LastRecalledPreset) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.LastRecalledPreset = uint8(v) }},
	{name: "free_use", kind: kindScalar, bits: 8,
		num:    func(s *Settings, _ int) uint64 { return uint64(s.General.FreeUse) },
		setNum: func(s *Settings, _ int, v uint64) { s.General.FreeUse = uint8(v) }},
}

// resolveField walks a dot path over the member tables and returns the
// terminal descriptor plus the array index (0 when the path has none).
func resolveField(path string) (*fieldDef, int, error) {
	tokens := strings.Split(path, ".")
	var member *memberDef
	for m := range settingsMembers {
		if settingsMembers[m].name == tokens[0] {
			member = &settingsMembers[m]
			break
		}
	}
	if member == nil {
		return nil, 0, &UnknownFieldError{Path: path}
	}

	idx := 0
	rest := tokens[1:]
	if member.field != nil {
		if len(rest) != 0 {
			return nil, 0, &UnknownFieldError{Path: path}
		}
		return member.field, 0, nil
	}
	if member.count > 0 {
		if len(rest) == 0 {
			return nil, 0, &UnknownFieldError{Path: path}
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 0 || n >= member.count {
			return nil, 0, &UnknownFieldError{Path: path}
		}
		idx = n
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return nil, 0, &UnknownFieldError{Path: path}
	}
	for f := range member.fields {
		if member.fields[f].name == rest[0] {
			return &member.fields[f], idx, nil
		}
	}
	return nil, 0, &UnknownFieldError{Path: path}
}

// Value is the result of a path get: a scalar, an enum code or a text field.
type Value struct {
	kind fieldKind
	num  uint64
	text string
	enum *enumDef
}

// Uint returns the numeric value; 0 for text fields.
func (v Value) Uint() uint64 { return v.num }

// Text returns the text value; empty for numeric fields.
func (v Value) Text() string { return v.text }

// String renders scalars in decimal, enums by symbolic name and text fields
// verbatim.
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindEnum:
		return v.enum.name(v.num)
	default:
		return strconv.FormatUint(v.num, 10)
	}
}

// Get resolves a dot path and returns the field's current value.
func (s *Settings) Get(path string) (Value, error) {
	def, idx, err := resolveField(path)
	if err != nil {
		return Value{}, err
	}
	if def.kind == kindText {
		return Value{kind: kindText, text: def.text(s, idx)}, nil
	}
	return Value{kind: def.kind, num: def.num(s, idx), enum: def.enum}, nil
}

// Set resolves a dot path and stores value, parsed according to the field:
// enum fields accept a symbolic member name or its integer code, scalars an
// integer ("0x.." accepted), text fields any string (truncated to the wire
// width). The structure is mutated in place so partial updates accumulate
// before a single write-back.
func (s *Settings) Set(path, value string) error {
	def, idx, err := resolveField(path)
	if err != nil {
		return err
	}
	switch def.kind {
	case kindText:
		if len(value) > def.width {
			value = value[:def.width]
		}
		def.setText(s, idx, value)
		return nil

	case kindEnum:
		if code, ok := def.enum.lookup(value); ok {
			def.setNum(s, idx, code)
			return nil
		}
		n, perr := strconv.ParseUint(value, 0, 64)
		if perr != nil {
			return &InvalidEnumValueError{Path: path, Value: value, Valid: def.enum.names}
		}
		if n > def.enum.max() {
			return &ValueOutOfRangeError{Path: path, Value: n, Max: def.enum.max()}
		}
		def.setNum(s, idx, n)
		return nil

	default:
		n, perr := strconv.ParseUint(value, 0, 64)
		if perr != nil {
			return fmt.Errorf("baseband: %s: %q is not an integer", path, value)
		}
		max := uint64(1)<<def.bits - 1
		if n > max {
			return &ValueOutOfRangeError{Path: path, Value: n, Max: max}
		}
		def.setNum(s, idx, n)
		return nil
	}
}
