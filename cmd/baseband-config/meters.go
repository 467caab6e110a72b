package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/pe1obw/baseband-config/baseband"
)

// meter ties a gauge to the readout field it displays.
type meter struct {
	gauge *widgets.Gauge
	peak  func(a *baseband.Actuals) (peak, fullScale uint16)
}

func newMeter(title string, peak func(a *baseband.Actuals) (uint16, uint16)) meter {
	g := widgets.NewGauge()
	g.Title = title
	g.BarColor = ui.ColorGreen
	g.LabelStyle = ui.NewStyle(ui.ColorWhite)
	return meter{gauge: g, peak: peak}
}

// runMeters shows a live VU dashboard: audio input and NICAM peaks on the
// left, the four FM modulator peaks and the board status on the right.
// Refreshes once a second; q, ESC or Ctrl-C quits.
func runMeters(d *baseband.Device) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	defer ui.Close()

	left := []meter{
		newMeter("ADC1 L", func(a *baseband.Actuals) (uint16, uint16) { return a.ADC1LeftPeak, baseband.PeakFullScale }),
		newMeter("ADC1 R", func(a *baseband.Actuals) (uint16, uint16) { return a.ADC1RightPeak, baseband.PeakFullScale }),
		newMeter("ADC2 L", func(a *baseband.Actuals) (uint16, uint16) { return a.ADC2LeftPeak, baseband.PeakFullScale }),
		newMeter("ADC2 R", func(a *baseband.Actuals) (uint16, uint16) { return a.ADC2RightPeak, baseband.PeakFullScale }),
		newMeter("NICAM L", func(a *baseband.Actuals) (uint16, uint16) { return a.NicamLeftPeak, baseband.PeakFullScale }),
		newMeter("NICAM R", func(a *baseband.Actuals) (uint16, uint16) { return a.NicamRightPeak, baseband.PeakFullScale }),
	}
	var right []meter
	for i := 0; i < 4; i++ {
		i := i // per-iteration copy: required while go.mod declares go < 1.22
		right = append(right, newMeter(fmt.Sprintf("FM %d", i+1),
			func(a *baseband.Actuals) (uint16, uint16) { return a.FMAudioPeak[i], baseband.FMPeakFullScale }))
	}
	for i := range left {
		left[i].gauge.SetRect(0, i*3, 40, (i+1)*3)
	}
	for i := range right {
		right[i].gauge.SetRect(40, i*3, 80, (i+1)*3)
	}
	status := widgets.NewParagraph()
	status.Title = "Status"
	status.SetRect(40, len(right)*3, 80, len(left)*3)

	meters := append(append([]meter{}, left...), right...)
	draw := func() error {
		a, err := d.ReadActuals()
		if err != nil {
			return err
		}
		drawables := make([]ui.Drawable, 0, len(meters)+1)
		for _, m := range meters {
			peak, fullScale := m.peak(&a)
			m.gauge.Percent = int(math.Round(100 * baseband.MeterLevel(peak, fullScale)))
			m.gauge.Label = fmt.Sprintf("%.1f dB", baseband.PeakDB(peak, fullScale))
			drawables = append(drawables, m.gauge)
		}
		status.Text = statusText(&a)
		drawables = append(drawables, status)
		ui.Render(drawables...)
		return nil
	}
	if err := draw(); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	events := ui.PollEvents()
	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>", "<Escape>":
				return nil
			case "<Resize>":
				ui.Clear()
				if err := draw(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := draw(); err != nil {
				return err
			}
		}
	}
}

func statusText(a *baseband.Actuals) string {
	var clips []string
	if a.VideoADCClip {
		clips = append(clips, "video-adc")
	}
	if a.VideoLowPassClip {
		clips = append(clips, "video-lowpass")
	}
	if a.VideoPreempClip {
		clips = append(clips, "video-preemp")
	}
	if a.NicamUpsamplingClip {
		clips = append(clips, "nicam-upsampling")
	}
	if a.BasebandClip {
		clips = append(clips, "baseband")
	}
	clip := "none"
	if len(clips) > 0 {
		clip = strings.Join(clips, ", ")
	}
	pll := "locked"
	if !a.BasebandPLLLocked {
		pll = "UNLOCKED"
	}
	nicam := ""
	if a.NicamReset {
		nicam = ", nicam resync"
	}
	return fmt.Sprintf("clip: %s\npll: %s%s\nvideo ADC %d..%d  DAC %d..%d",
		clip, pll, nicam, a.ADCInMin, a.ADCInMax, a.DACOutMin, a.DACOutMax)
}
