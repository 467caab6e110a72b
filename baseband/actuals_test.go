package baseband

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

func actualsVector() []byte {
	le := binary.LittleEndian
	buf := make([]byte, ActualsSize)
	le.PutUint16(buf[0:], 1000)
	le.PutUint16(buf[2:], 2000)
	le.PutUint16(buf[4:], 3000)
	le.PutUint16(buf[6:], 4000)
	le.PutUint16(buf[8:], 100)
	le.PutUint16(buf[10:], 200)
	le.PutUint16(buf[12:], 300)
	le.PutUint16(buf[14:], 400)
	le.PutUint32(buf[16:], 1<<0|1<<4)
	le.PutUint16(buf[20:], 10)
	le.PutUint16(buf[22:], 900)
	le.PutUint16(buf[24:], 20)
	le.PutUint16(buf[26:], 800)
	le.PutUint32(buf[28:], 1<<1)
	le.PutUint16(buf[32:], 12345)
	le.PutUint16(buf[34:], 23456)
	return buf
}

func TestActualsDecode(t *testing.T) {
	var a Actuals
	if err := a.UnmarshalBinary(actualsVector()); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	want := Actuals{
		ADC1LeftPeak:      1000,
		ADC1RightPeak:     2000,
		ADC2LeftPeak:      3000,
		ADC2RightPeak:     4000,
		FMAudioPeak:       [4]uint16{100, 200, 300, 400},
		VideoADCClip:      true,
		BasebandClip:      true,
		ADCInMin:          10,
		ADCInMax:          900,
		DACOutMin:         20,
		DACOutMax:         800,
		BasebandPLLLocked: true,
		NicamLeftPeak:     12345,
		NicamRightPeak:    23456,
	}
	if !reflect.DeepEqual(a, want) {
		t.Fatalf("decoded %+v\nwant    %+v", a, want)
	}
}

func TestActualsRejectsWrongSize(t *testing.T) {
	var a Actuals
	for _, n := range []int{0, ActualsSize - 1, ActualsSize + 1} {
		err := a.UnmarshalBinary(make([]byte, n))
		var lerr *LayoutError
		if !errors.As(err, &lerr) || lerr.Want != ActualsSize {
			t.Errorf("size %d: err = %v", n, err)
		}
	}
}

func TestPeakDB(t *testing.T) {
	tests := []struct {
		peak, fullScale uint16
		want            float64
	}{
		{32768, PeakFullScale, 0},
		{16384, PeakFullScale, -6.02},
		{0, PeakFullScale, -80},     // log of zero clamps to the meter floor
		{65535, PeakFullScale, 0},   // above full scale clamps to the top
		{1024, FMPeakFullScale, 0},
		{32, FMPeakFullScale, -30.10},
	}
	for _, tt := range tests {
		got := PeakDB(tt.peak, tt.fullScale)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("PeakDB(%d, %d) = %.3f, want %.2f", tt.peak, tt.fullScale, got, tt.want)
		}
	}
}

func TestMeterLevel(t *testing.T) {
	tests := []struct {
		peak, fullScale uint16
		want            float64
	}{
		{32768, PeakFullScale, 1},
		{0, PeakFullScale, 0},
		{65535, PeakFullScale, 1},
		{328, PeakFullScale, 0.5}, // -40 dB sits mid-bar
	}
	for _, tt := range tests {
		got := MeterLevel(tt.peak, tt.fullScale)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("MeterLevel(%d, %d) = %.3f, want %.2f", tt.peak, tt.fullScale, got, tt.want)
		}
	}
}

func TestReadActuals(t *testing.T) {
	f := newFakeBoard()
	copy(f.readout[:], actualsVector())
	d := New(f, fastConfig())

	a, err := d.ReadActuals()
	if err != nil {
		t.Fatalf("ReadActuals: %v", err)
	}
	if a.ADC1LeftPeak != 1000 || !a.BasebandPLLLocked || a.NicamRightPeak != 23456 {
		t.Fatalf("readout = %+v", a)
	}
	if a.NicamReset {
		t.Fatal("NicamReset decoded from a clear bit")
	}
}
