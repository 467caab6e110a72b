package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/pe1obw/baseband-config/baseband"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	alert   = color.New(color.FgRed, color.Bold)
	okGreen = color.New(color.FgGreen)
	offRed  = color.New(color.FgRed)
	inverse = color.New(color.ReverseVideo)
)

func onOff(v uint8) string {
	if v != 0 {
		return okGreen.Sprint("on")
	}
	return offRed.Sprint("off")
}

func printInfo(info baseband.Info) {
	heading.Println("Connected to baseband board")
	fmt.Printf("  hardware version: %d\n", info.HWVersion)
	fmt.Printf("  FPGA version:     %d\n", info.FPGAVersion)
	fmt.Printf("  software version: %s\n", info.SWVersion())
	if info.BootloaderOnly() {
		alert.Println("  bootloader only, no firmware image; run -upgrade first")
	}
}

func printSettings(s *baseband.Settings) {
	heading.Printf("Settings %q\n", s.Name)
	fmt.Println("FM carriers:")
	for i := range s.FM {
		f := &s.FM[i]
		fmt.Printf("  %d: %5d kHz, level=%d, input=%s, preemp=%s, bw=%s",
			i+1, f.RFFrequencyKHz, f.RFLevel, f.Input, f.Preemphasis, f.Bandwidth)
		if i < 2 {
			// Only the first two carriers have an AM path.
			fmt.Printf(", AM=%d", f.AM)
		}
		fmt.Printf(", gen=%s", generatorLabel(f.GeneratorEna, f.GeneratorLevel))
		fmt.Printf(", ena=%s\n", onOff(f.Enable))
	}
	n := &s.Nicam
	fmt.Printf("NICAM: %5d kHz, level=%d, bw=%s, input=%s/%s, gen=%s/%s, ena=%s, invert=%s\n",
		n.RFFrequencyKHz, n.RFLevel, n.Bandwidth, n.InputCh1, n.InputCh2,
		generatorLabel(n.GeneratorEnaCh1, n.GeneratorLevelCh1),
		generatorLabel(n.GeneratorEnaCh2, n.GeneratorLevelCh2),
		onOff(n.Enable), onOff(n.InvertSpectrum))
	v := &s.Video
	fmt.Printf("Video: level=%d, mode=%s, invert=%s, osd=%s, input=%s, bypass=%s, pattern=%s, menu=%s, ena=%s\n",
		v.VideoLevel, v.VideoMode, onOff(v.InvertVideo), v.OSDMode, v.VideoIn,
		onOff(v.FilterBypass), onOff(v.PatternEnable), onOff(v.ShowMenu), onOff(v.Enable))
	g := &s.General
	fmt.Printf("Audio generator: %d Hz %s, mode=%s, morse %q at %s ppm every %d s\n",
		g.AudioNCOFrequency, g.Waveform, g.AudioNCOMode,
		g.MorseMessage, baseband.MorseSpeedLabels[g.MorseSpeed&3], g.MorseMessageRepeatTime)
	fmt.Printf("Last recalled preset: %d\n", g.LastRecalledPreset)
}

func generatorLabel(ena, level uint8) string {
	if ena == 0 {
		return "off"
	}
	return fmt.Sprintf("%d dB", baseband.GeneratorLevelDB(level))
}

// printPresetTable prints the slot overview the way the settings menu
// shows it: four presets per row, stored name or "empty".
func printPresetTable(d *baseband.Device) error {
	status, err := d.PresetStatus()
	if err != nil {
		return err
	}
	heading.Println("Presets")
	for slot := baseband.PresetMin; slot <= baseband.PresetMax; slot++ {
		name := "empty"
		if status.InUse(slot) {
			s, err := d.ViewPreset(slot)
			if err != nil {
				return err
			}
			name = s.Name
		}
		sep := "  "
		if slot%4 == 0 || slot == baseband.PresetMax {
			sep = "\n"
		}
		fmt.Printf("%2d: %-14s%s", slot, name, sep)
	}
	return nil
}

// printPresets dumps the full settings of every stored preset.
func printPresets(d *baseband.Device) error {
	status, err := d.PresetStatus()
	if err != nil {
		return err
	}
	slots := status.Slots()
	if len(slots) == 0 {
		fmt.Println("no presets stored")
		return nil
	}
	for _, slot := range slots {
		s, err := d.ViewPreset(slot)
		if err != nil {
			return err
		}
		heading.Printf("Preset %d\n", slot)
		printSettings(s)
		fmt.Println()
	}
	return nil
}

// printDisplay renders the OSD frame as a bordered text box, keying
// inverse-video cells the way the board does.
func printDisplay(frame []byte) {
	border := "+" + strings.Repeat("-", baseband.OSDColumns) + "+"
	fmt.Println(border)
	for row := 0; row < baseband.OSDRows; row++ {
		fmt.Print("|")
		for col := 0; col < baseband.OSDColumns; col++ {
			c := frame[row*baseband.OSDColumns+col]
			ch := c & 0x7F
			if ch < 0x20 || ch == 0x7F {
				ch = ' '
			}
			if c&0x80 != 0 {
				inverse.Print(string(rune(ch)))
			} else {
				fmt.Print(string(rune(ch)))
			}
		}
		fmt.Println("|")
	}
	fmt.Println(border)
}

// printProgress echoes flash progress in the firmware tool's line format.
func printProgress(op baseband.FlashOp, addr uint32, done, total int) {
	switch op {
	case baseband.FlashErase:
		fmt.Printf("erased sector at 0x%06X (%d/%d)\n", addr, done, total)
	default:
		fmt.Printf("%s at 0x%06X (%.1f%%)\n", op, addr, 100*float64(done)/float64(total))
	}
}
