package cbor

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/synadia-labs/bindump.go/dump"
)

// Header is the decoded initial byte and argument of a data item.
type Header struct {
	Major uint8 // major type, 0..7
	Info  uint8 // additional info, 0..31

	// Arg is the decoded argument: the value of an integer, the length of a
	// string, the element count of an array or map, the tag number, the
	// simple value, or the bit pattern of a float.
	Arg uint64

	// Indefinite is set for indefinite-length strings, arrays and maps.
	Indefinite bool

	// NonCanonical is set when Arg is not encoded in its shortest form.
	NonCanonical bool

	Offset int64  // position of the initial byte
	Size   int    // number of header bytes, 1..9
	Raw    []byte // the header bytes
}

// IsBreak reports whether h is the stop code of an indefinite-length item.
func (h Header) IsBreak() bool {
	return h.Major == majorTypeSimple && h.Info == simpleBreak
}

// String returns a short description of h such as "array(3)" or "bytes(_)".
func (h Header) String() string {
	if h.IsBreak() {
		return "break"
	}
	s := MajorName(h.Major)
	switch {
	case h.Indefinite:
		s += "(_)"
	case h.Major != majorTypeSimple:
		s += "(" + strconv.FormatUint(h.Arg, 10) + ")"
	default:
		s += "(" + strconv.Itoa(int(h.Info)) + ")"
	}
	return s
}

// readHeader reads one item header from s. At a clean end of input it returns
// io.EOF; a header cut short is dump.ErrTruncated.
func readHeader(s *dump.Source) (Header, error) {
	h := Header{Offset: s.Offset()}
	lead, err := s.ReadByte()
	if err != nil {
		return h, err
	}
	h.Major = getMajorType(lead)
	h.Info = getAddInfo(lead)

	var n int
	switch {
	case h.Info <= addInfoDirect:
		h.Arg = uint64(h.Info)
	case h.Info == addInfoUint8:
		n = 1
	case h.Info == addInfoUint16:
		n = 2
	case h.Info == addInfoUint32:
		n = 4
	case h.Info == addInfoUint64:
		n = 8
	case h.Info == addInfoIndefinite:
		switch h.Major {
		case majorTypeBytes, majorTypeText, majorTypeArray, majorTypeMap:
			h.Indefinite = true
		case majorTypeSimple:
			// break
		default:
			h.Size, h.Raw = 1, []byte{lead}
			return h, dump.ErrInvalidMajorType
		}
	default:
		// 28, 29, 30 are reserved
		h.Size, h.Raw = 1, []byte{lead}
		return h, dump.ErrInvalidAdditionalInfo
	}

	var raw [9]byte
	raw[0] = lead
	if n > 0 {
		if err := s.ReadFull(raw[1 : 1+n]); err != nil {
			return h, err
		}
		switch n {
		case 1:
			h.Arg = uint64(raw[1])
		case 2:
			h.Arg = uint64(binary.BigEndian.Uint16(raw[1:]))
		case 4:
			h.Arg = uint64(binary.BigEndian.Uint32(raw[1:]))
		case 8:
			h.Arg = binary.BigEndian.Uint64(raw[1:])
		}
	}
	h.Size = 1 + n
	h.Raw = append([]byte(nil), raw[:h.Size]...)

	if h.Major == majorTypeSimple {
		// Two-byte simple values below 32 are not well-formed (RFC 8949 3.3).
		if h.Info == addInfoUint8 && h.Arg < 32 {
			return h, dump.ErrInvalidAdditionalInfo
		}
		return h, nil
	}
	h.NonCanonical = isNonCanonicalArg(n, h.Arg)
	return h, nil
}

// isNonCanonicalArg reports whether an argument encoded in n following bytes
// would fit a shorter encoding.
func isNonCanonicalArg(n int, v uint64) bool {
	switch n {
	case 1:
		return v <= addInfoDirect
	case 2:
		return v <= math.MaxUint8
	case 4:
		return v <= math.MaxUint16
	case 8:
		return v <= math.MaxUint32
	}
	return false
}
