package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pe1obw/baseband-config/baseband"
)

func TestParsePattern(t *testing.T) {
	src := strings.Join([]string{
		"0000: 00 11 22 33",
		"0010: FF",
		"",
		"some header line the tool should skip",
		"0004: AA BB",
	}, "\n")
	img, err := parsePattern([]byte(src))
	if err != nil {
		t.Fatalf("parsePattern: %v", err)
	}
	if len(img) != baseband.PatternSize {
		t.Fatalf("image size = %d", len(img))
	}
	want := map[int]byte{0: 0x00, 1: 0x11, 2: 0x22, 3: 0x33, 4: 0xAA, 5: 0xBB, 6: 0x00, 0x10: 0xFF}
	for addr, b := range want {
		if img[addr] != b {
			t.Errorf("img[0x%04X] = %02X, want %02X", addr, img[addr], b)
		}
	}
}

func TestParsePatternCRLF(t *testing.T) {
	img, err := parsePattern([]byte("0000: 01 02\r\n0002: 03\r\n"))
	if err != nil {
		t.Fatalf("parsePattern: %v", err)
	}
	if img[0] != 1 || img[1] != 2 || img[2] != 3 {
		t.Fatalf("img[:3] = % X", img[:3])
	}
}

func TestParsePatternErrors(t *testing.T) {
	for _, src := range []string{
		"0000: GG",       // bad byte
		"XYZ0: 00",       // bad address
		"1FFF: 00 11",    // second byte runs past the end
		"2000: 00",       // starts past the end
	} {
		if _, err := parsePattern([]byte(src)); err == nil {
			t.Errorf("parsePattern(%q) accepted", src)
		}
	}
}

func TestPatternRoundTrip(t *testing.T) {
	img := make([]byte, baseband.PatternSize)
	for i := range img {
		img[i] = byte(i*7 + i>>8)
	}
	var buf bytes.Buffer
	if err := formatPattern(&buf, img); err != nil {
		t.Fatalf("formatPattern: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != baseband.PatternSize/32 {
		t.Fatalf("%d lines, want %d", len(lines), baseband.PatternSize/32)
	}
	if !strings.HasPrefix(lines[0], "0000: ") || !strings.HasPrefix(lines[1], "0020: ") {
		t.Fatalf("unexpected line format: %q", lines[0])
	}
	back, err := parsePattern(buf.Bytes())
	if err != nil {
		t.Fatalf("parsePattern: %v", err)
	}
	if !bytes.Equal(back, img) {
		t.Fatal("round trip differs")
	}
}
