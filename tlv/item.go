package tlv

import (
	"math/big"
	"strconv"
	"strings"
)

// Item is one decoded unit.
type Item struct {
	Header Header
	Value  Value

	Offset int64 // position of the identifier byte
	Size   int64 // bytes consumed, including the header and any end-of-contents

	// Err holds the problems found in this unit itself (not in its
	// children), joined with errors.Join. It is nil for a clean unit.
	Err error
}

// Value is the decoded content of an Item. It is one of Bool, Int, BigInt,
// Null, OID, BitString, Bytes, Text, Constructed, EndOfContents or Cutoff.
type Value interface {
	tlvValue()
}

// Bool is a BOOLEAN.
type Bool bool

// Int is an INTEGER or ENUMERATED of at most 8 bytes.
type Int int64

// BigInt is an INTEGER wider than 8 bytes, in two's complement.
type BigInt struct {
	Data []byte // materialized bytes, at most the configured number
	Len  int64
}

// Big returns the value of i. It is nil when i was not materialized
// completely.
func (i BigInt) Big() *big.Int {
	if int64(len(i.Data)) != i.Len || len(i.Data) == 0 {
		return nil
	}
	z := new(big.Int).SetBytes(i.Data)
	if i.Data[0]&0x80 != 0 {
		z.Sub(z, new(big.Int).Lsh(big.NewInt(1), uint(len(i.Data))*8))
	}
	return z
}

// Null is a NULL.
type Null struct{}

// OID is an OBJECT IDENTIFIER or RELATIVE-OID.
type OID struct {
	Arcs     []uint64
	Relative bool
}

// String returns the dotted form of o, or "" for an empty identifier.
func (o OID) String() string {
	var sb strings.Builder
	for i, a := range o.Arcs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(a, 10))
	}
	return sb.String()
}

// BitString is a BIT STRING. Unused is the number of unused bits in the last
// byte.
type BitString struct {
	Unused uint8
	Data   []byte
	Len    int64 // payload length without the unused-bits byte

	// Encapsulated holds the units of a payload that decodes as nested TLV.
	Encapsulated []*Item
}

// Bytes is an OCTET STRING or a payload without further interpretation.
type Bytes struct {
	Data []byte
	Len  int64

	// Encapsulated holds the units of a payload that decodes as nested TLV.
	Encapsulated []*Item
}

// Text is a character string or a time value, converted to UTF-8. When the
// payload cannot be converted, Invalid is set and Data holds the raw bytes.
type Text struct {
	Data    []byte
	Len     int64 // encoded payload length
	Kept    int64 // number of payload bytes converted into Data
	Invalid bool
}

// Constructed holds the children of a constructed unit.
type Constructed struct {
	Items []*Item
}

// EndOfContents is an end-of-contents marker where none was expected.
type EndOfContents struct{}

// Cutoff replaces a unit nested deeper than the configured maximum. The
// unit's bytes were consumed but its content was not materialized.
type Cutoff struct{}

func (Bool) tlvValue()          {}
func (Int) tlvValue()           {}
func (BigInt) tlvValue()        {}
func (Null) tlvValue()          {}
func (OID) tlvValue()           {}
func (BitString) tlvValue()     {}
func (Bytes) tlvValue()         {}
func (Text) tlvValue()          {}
func (Constructed) tlvValue()   {}
func (EndOfContents) tlvValue() {}
func (Cutoff) tlvValue()        {}
