package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pe1obw/baseband-config/baseband"
	"github.com/pe1obw/baseband-config/x/mathx"
)

// parsePattern decodes a pattern memory dump: one "AAAA: XX XX ..." line
// per run of bytes, addresses in hex. Lines without an address prefix are
// ignored, bytes land at their stated offsets and unmentioned bytes stay
// zero, so partial files work.
func parsePattern(src []byte) ([]byte, error) {
	img := make([]byte, baseband.PatternSize)
	for ln, line := range strings.Split(string(src), "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 6 || line[4] != ':' {
			continue
		}
		addr64, err := strconv.ParseUint(line[:4], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("pattern file line %d: bad address %q", ln+1, line[:4])
		}
		addr := int(addr64)
		for _, tok := range strings.Fields(line[5:]) {
			b, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("pattern file line %d: bad byte %q", ln+1, tok)
			}
			if addr >= len(img) {
				return nil, fmt.Errorf("pattern file line %d: 0x%04X is past the pattern memory", ln+1, addr)
			}
			img[addr] = byte(b)
			addr++
		}
	}
	return img, nil
}

// formatPattern renders pattern memory in the same format, 32 bytes per
// line.
func formatPattern(w io.Writer, img []byte) error {
	for off := 0; off < len(img); off += 32 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%04X:", off)
		for _, b := range img[off:mathx.Min(off+32, len(img))] {
			fmt.Fprintf(&sb, " %02X", b)
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
