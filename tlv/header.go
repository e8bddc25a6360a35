package tlv

import (
	"github.com/synadia-labs/bindump.go/dump"
)

const (
	// maxTagBytes is the number of base-128 bytes accepted for a high tag
	// number.
	maxTagBytes = 4

	// maxLengthBytes is the number of bytes accepted for a long-form length.
	maxLengthBytes = 4
)

// Header is a decoded identifier and length.
type Header struct {
	Class       Class
	Constructed bool
	Tag         uint32

	// Length is the payload length of a definite-length unit. It is 0 when
	// Indefinite is set.
	Length     int64
	Indefinite bool

	// NonCanonical is set for a long-form length below 128.
	NonCanonical bool

	Offset int64  // position of the identifier byte
	Size   int    // number of header bytes
	Raw    []byte // the header bytes
}

// IsEOC reports whether h is the end-of-contents marker 00 00.
func (h Header) IsEOC() bool {
	return h.Class == ClassUniversal && !h.Constructed && h.Tag == TagEndOfContents &&
		h.Length == 0 && !h.Indefinite
}

// String returns the display name of the tag of h.
func (h Header) String() string {
	return label(h.Class, h.Tag)
}

// readHeader reads one header from s. At a clean end of input it returns
// io.EOF. A header cut short is dump.ErrTruncated.
func readHeader(s *dump.Source) (Header, error) {
	h := Header{Offset: s.Offset()}
	var raw [1 + maxTagBytes + 1 + maxLengthBytes]byte
	n := 0
	next := func() (byte, error) {
		b, err := s.ReadByte()
		if err != nil {
			return 0, dump.NoEOF(err)
		}
		raw[n] = b
		n++
		return b, nil
	}
	done := func(err error) (Header, error) {
		h.Size = n
		h.Raw = append([]byte(nil), raw[:n]...)
		return h, err
	}

	b, err := s.ReadByte()
	if err != nil {
		// io.EOF stays io.EOF
		return h, err
	}
	raw[0] = b
	n = 1
	h.Class = Class(b >> 6)
	h.Constructed = b&0x20 != 0
	h.Tag = uint32(b & 0x1f)

	// high tag number form
	if b&0x1f == 0x1f {
		h.Tag = 0
		for i := 0; ; i++ {
			if b, err = next(); err != nil {
				return done(err)
			}
			h.Tag = h.Tag<<7 | uint32(b&0x7f)
			if b&0x80 == 0 {
				break
			}
			if i == maxTagBytes-1 {
				return done(dump.ErrTagTooLong)
			}
		}
	}

	if b, err = next(); err != nil {
		return done(err)
	}
	switch {
	case b&0x80 == 0:
		h.Length = int64(b)
	case b == 0x80:
		h.Indefinite = true
	default:
		count := int(b & 0x7f)
		if count > maxLengthBytes {
			return done(dump.ErrLengthTooLong)
		}
		for ; count > 0; count-- {
			if b, err = next(); err != nil {
				return done(err)
			}
			h.Length = h.Length<<8 | int64(b)
		}
		h.NonCanonical = h.Length < 0x80
	}

	if h.Indefinite && !h.Constructed {
		return done(dump.ErrIndefinitePrimitive)
	}
	return done(nil)
}
