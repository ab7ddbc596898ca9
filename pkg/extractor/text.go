package extractor

import (
	"strings"
	"unicode/utf16"
)

// printableRuns mimics the unix 'strings' command over a binary stream. It
// collects runs of at least min printable ASCII bytes, then runs of at least
// min printable UTF-16LE code units, one run per line.
func printableRuns(b []byte, min int) string {
	if min <= 0 {
		min = 4
	}

	var sb strings.Builder
	writeRun := func(s string) {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
	}

	start, runLen := 0, 0
	for i, c := range b {
		if isPrintable(c) {
			runLen++
			continue
		}
		if runLen >= min {
			writeRun(string(b[start:i]))
		}
		runLen = 0
		start = i + 1
	}
	if runLen >= min {
		writeRun(string(b[start:]))
	}

	var units []uint16
	flush := func() {
		if len(units) >= min {
			writeRun(string(utf16.Decode(units)))
		}
		units = units[:0]
	}
	for i := 0; i+1 < len(b); i += 2 {
		lo, hi := b[i], b[i+1]
		u := uint16(lo) | uint16(hi)<<8
		if (hi == 0 && isPrintable(lo)) || isLetterPlane(u) {
			units = append(units, u)
			continue
		}
		flush()
	}
	flush()

	return sb.String()
}

func isPrintable(c byte) bool {
	return c >= 32 && c < 127 || c == '\t' || c == '\r' || c == '\n'
}

// isLetterPlane accepts accented Latin letters and typographic dashes and
// quotes. Wider ranges would let plain ASCII pairs decode as bogus UTF-16.
func isLetterPlane(u uint16) bool {
	return u >= 0x00A0 && u <= 0x024F || u >= 0x2013 && u <= 0x201E
}
