package tlv

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/synadia-labs/bindump.go/dump"
)

var (
	bmpDecoding       encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	universalDecoding encoding.Encoding = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
)

// isString reports whether a universal tag holds characters or a time value.
func isString(tag uint32) bool {
	switch tag {
	case TagObjectDescriptor, TagUTF8String, TagTime,
		TagNumericString, TagPrintableString, TagT61String, TagVideotexString,
		TagIA5String, TagUTCTime, TagGeneralizedTime, TagGraphicString,
		TagVisibleString, TagGeneralString, TagUniversalString, TagBMPString,
		TagDate, TagTimeOfDay, TagDateTime, TagDuration:
		return true
	}
	return false
}

// decodeString converts the payload of a string type to UTF-8. truncated is
// set when p holds only the first bytes of the payload; a character cut at
// the end is then dropped instead of being reported. It returns the text, the
// number of payload bytes it represents, and false when p cannot be
// converted.
func decodeString(tag uint32, p []byte, truncated bool) ([]byte, int, bool) {
	switch tag {
	case TagUTF8String:
		if truncated {
			p = dump.TrimPartialRune(p)
		}
		return p, len(p), utf8.Valid(p)
	case TagBMPString:
		return decodeWide(bmpDecoding, p, 2, truncated)
	case TagUniversalString:
		return decodeWide(universalDecoding, p, 4, truncated)
	}
	// The remaining types are ASCII subsets in practice. Anything else
	// (TeletexString in particular) is read as Latin-1.
	if utf8.Valid(p) {
		return p, len(p), true
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(p)
	if err != nil {
		return p, len(p), false
	}
	return out, len(p), true
}

// decodeWide converts UTF-16 or UTF-32 with a fixed code unit size.
func decodeWide(enc encoding.Encoding, p []byte, unit int, truncated bool) ([]byte, int, bool) {
	if truncated {
		p = p[:len(p)-len(p)%unit]
	} else if len(p)%unit != 0 {
		return p, len(p), false
	}
	out, err := enc.NewDecoder().Bytes(p)
	if err != nil || !utf8.Valid(out) {
		return p, len(p), false
	}
	return out, len(p), true
}
