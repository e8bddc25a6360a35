package dump

import "unicode/utf8"

// CutoffMarker is rendered in place of a unit nested deeper than the
// configured maximum.
const CutoffMarker = "<max nesting level exceeded>"

// Printable reports whether every byte of p is printable ASCII. Byte payloads
// are shown as text only when this holds; otherwise they are shown as hex.
func Printable(p []byte) bool {
	for _, c := range p {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// Truncate returns the part of p to display when at most max bytes are shown,
// and the number of bytes of the total payload length that are not shown.
// total may exceed len(p) when the decoder already dropped bytes. A max of
// zero or less shows everything that was kept.
func Truncate(p []byte, total int64, max int) (shown []byte, more int64) {
	shown = p
	if max > 0 && len(shown) > max {
		shown = shown[:max]
	}
	return shown, total - int64(len(shown))
}

// TrimPartialRune drops a trailing incomplete UTF-8 sequence from p. Text
// payloads cut at the materialization limit are validated after trimming so
// that the cut itself is not reported as invalid UTF-8.
func TrimPartialRune(p []byte) []byte {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(p); i++ {
		c := p[len(p)-i]
		if c < utf8.RuneSelf {
			return p
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(p[len(p)-i:]) {
				return p[:len(p)-i]
			}
			return p
		}
	}
	return p
}
