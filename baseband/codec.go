package baseband

import (
	"bytes"
	"encoding/binary"
)

// SettingsSize is the byte size of the packed settings image. It must match
// the layout the device firmware was compiled with; a mismatch silently
// corrupts fields, so both codec directions enforce it.
const SettingsSize = 68

const (
	nameWidth  = 12
	morseWidth = 16
)

// Packed little-endian layout:
//
//	 0..11  name, NUL padded
//	12..35  fm[0..3], 6 bytes each:
//	        u16 rf_frequency_khz, u16 rf_level, u16 flags
//	        flags: 0..3 input, 4..5 preemphasis, 6..8 fm_bandwidth,
//	               9 generator_ena, 10..13 generator_level, 14 am, 15 enable
//	36..42  nicam: u16 rf_frequency_khz, u16 rf_level,
//	        byte input_ch1(0..3)|input_ch2(4..7),
//	        byte generator_level_ch1(0..3)|generator_level_ch2(4..7),
//	        byte 0 generator_ena_ch1, 1 generator_ena_ch2, 2 nicam_bandwidth,
//	             3 enable, 4 invert_spectrum
//	43..45  video: u16 0..7 video_level, 8..9 video_mode, 10 invert_video,
//	               11..12 osd_mode, 13..14 video_in, 15 filter_bypass;
//	        byte 0 show_menu, 1 pattern_enable, 2 enable
//	46..67  general: 16 bytes morse_message,
//	        u16 0..13 audio_nco_frequency, 14..15 waveform,
//	        u16 0..1 audio_nco_mode, 2..3 morse_speed, 4..13 morse_message_repeat_time,
//	        byte last_recalled_preset, byte free_use

// MarshalBinary packs the settings into their wire image. Enum and sub-byte
// scalar fields are validated first; nothing is emitted on failure.
func (s *Settings) MarshalBinary() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, SettingsSize)
	putText(buf[0:nameWidth], s.Name)
	for i := range s.FM {
		encodeFM(buf[12+6*i:], &s.FM[i], i < 2)
	}
	encodeNicam(buf[36:], &s.Nicam)
	encodeVideo(buf[43:], &s.Video)
	encodeGeneral(buf[46:], &s.General)
	return buf, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (s *Settings) UnmarshalBinary(data []byte) error {
	if len(data) != SettingsSize {
		return &LayoutError{What: "settings", Got: len(data), Want: SettingsSize}
	}
	s.Name = getText(data[0:nameWidth])
	for i := range s.FM {
		decodeFM(data[12+6*i:], &s.FM[i], i < 2)
	}
	decodeNicam(data[36:], &s.Nicam)
	decodeVideo(data[43:], &s.Video)
	decodeGeneral(data[46:], &s.General)
	return nil
}

func encodeFM(b []byte, f *FMSettings, amCapable bool) {
	binary.LittleEndian.PutUint16(b[0:], f.RFFrequencyKHz)
	binary.LittleEndian.PutUint16(b[2:], f.RFLevel)
	flags := uint16(f.Input) & 0x0F
	flags |= (uint16(f.Preemphasis) & 0x03) << 4
	flags |= (uint16(f.Bandwidth) & 0x07) << 6
	flags |= (uint16(f.GeneratorEna) & 0x01) << 9
	flags |= (uint16(f.GeneratorLevel) & 0x0F) << 10
	if amCapable {
		flags |= (uint16(f.AM) & 0x01) << 14
	}
	flags |= (uint16(f.Enable) & 0x01) << 15
	binary.LittleEndian.PutUint16(b[4:], flags)
}

func decodeFM(b []byte, f *FMSettings, amCapable bool) {
	f.RFFrequencyKHz = binary.LittleEndian.Uint16(b[0:])
	f.RFLevel = binary.LittleEndian.Uint16(b[2:])
	flags := binary.LittleEndian.Uint16(b[4:])
	f.Input = AudioInput(flags & 0x0F)
	f.Preemphasis = Preemphasis((flags >> 4) & 0x03)
	f.Bandwidth = FMBandwidth((flags >> 6) & 0x07)
	f.GeneratorEna = uint8((flags >> 9) & 0x01)
	f.GeneratorLevel = uint8((flags >> 10) & 0x0F)
	f.AM = 0
	if amCapable {
		f.AM = uint8((flags >> 14) & 0x01)
	}
	f.Enable = uint8((flags >> 15) & 0x01)
}

func encodeNicam(b []byte, n *NicamSettings) {
	binary.LittleEndian.PutUint16(b[0:], n.RFFrequencyKHz)
	binary.LittleEndian.PutUint16(b[2:], n.RFLevel)
	b[4] = byte(n.InputCh1)&0x0F | (byte(n.InputCh2)&0x0F)<<4
	b[5] = n.GeneratorLevelCh1&0x0F | (n.GeneratorLevelCh2&0x0F)<<4
	b[6] = n.GeneratorEnaCh1&0x01 |
		(n.GeneratorEnaCh2&0x01)<<1 |
		(byte(n.Bandwidth)&0x01)<<2 |
		(n.Enable&0x01)<<3 |
		(n.InvertSpectrum&0x01)<<4
}

func decodeNicam(b []byte, n *NicamSettings) {
	n.RFFrequencyKHz = binary.LittleEndian.Uint16(b[0:])
	n.RFLevel = binary.LittleEndian.Uint16(b[2:])
	n.InputCh1 = AudioInput(b[4] & 0x0F)
	n.InputCh2 = AudioInput(b[4] >> 4)
	n.GeneratorLevelCh1 = b[5] & 0x0F
	n.GeneratorLevelCh2 = b[5] >> 4
	n.GeneratorEnaCh1 = b[6] & 0x01
	n.GeneratorEnaCh2 = (b[6] >> 1) & 0x01
	n.Bandwidth = NicamBandwidth((b[6] >> 2) & 0x01)
	n.Enable = (b[6] >> 3) & 0x01
	n.InvertSpectrum = (b[6] >> 4) & 0x01
}

func encodeVideo(b []byte, v *VideoSettings) {
	w := uint16(v.VideoLevel)
	w |= (uint16(v.VideoMode) & 0x03) << 8
	w |= (uint16(v.InvertVideo) & 0x01) << 10
	w |= (uint16(v.OSDMode) & 0x03) << 11
	w |= (uint16(v.VideoIn) & 0x03) << 13
	w |= (uint16(v.FilterBypass) & 0x01) << 15
	binary.LittleEndian.PutUint16(b[0:], w)
	b[2] = v.ShowMenu&0x01 | (v.PatternEnable&0x01)<<1 | (v.Enable&0x01)<<2
}

func decodeVideo(b []byte, v *VideoSettings) {
	w := binary.LittleEndian.Uint16(b[0:])
	v.VideoLevel = uint8(w & 0xFF)
	v.VideoMode = VideoMode((w >> 8) & 0x03)
	v.InvertVideo = uint8((w >> 10) & 0x01)
	v.OSDMode = OSDMode((w >> 11) & 0x03)
	v.VideoIn = VideoIn((w >> 13) & 0x03)
	v.FilterBypass = uint8((w >> 15) & 0x01)
	v.ShowMenu = b[2] & 0x01
	v.PatternEnable = (b[2] >> 1) & 0x01
	v.Enable = (b[2] >> 2) & 0x01
}

func encodeGeneral(b []byte, g *GeneralSettings) {
	putText(b[0:morseWidth], g.MorseMessage)
	binary.LittleEndian.PutUint16(b[16:],
		g.AudioNCOFrequency&0x3FFF|(uint16(g.Waveform)&0x03)<<14)
	binary.LittleEndian.PutUint16(b[18:],
		uint16(g.AudioNCOMode)&0x03|
			(uint16(g.MorseSpeed)&0x03)<<2|
			(g.MorseMessageRepeatTime&0x3FF)<<4)
	b[20] = g.LastRecalledPreset
	b[21] = g.FreeUse
}

func decodeGeneral(b []byte, g *GeneralSettings) {
	g.MorseMessage = getText(b[0:morseWidth])
	w := binary.LittleEndian.Uint16(b[16:])
	g.AudioNCOFrequency = w & 0x3FFF
	g.Waveform = Waveform(w >> 14)
	w = binary.LittleEndian.Uint16(b[18:])
	g.AudioNCOMode = NCOMode(w & 0x03)
	g.MorseSpeed = uint8((w >> 2) & 0x03)
	g.MorseMessageRepeatTime = (w >> 4) & 0x3FF
	g.LastRecalledPreset = b[20]
	g.FreeUse = b[21]
}

// putText stores s into b NUL padded, truncating to the field width.
func putText(b []byte, s string) {
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
}

// getText returns the text up to the first NUL.
func getText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
