package cbor

import (
	"math/big"
	"strconv"
)

// Item is one decoded data item.
type Item struct {
	Header Header
	Value  Value

	Offset int64 // position of the first header byte
	Size   int64 // bytes consumed, including nested items and any break

	// Err holds the problems found in this item itself (not in its
	// children), joined with errors.Join. It is nil for a clean item.
	Err error
}

// Value is the decoded content of an Item. It is one of Uint, NegInt, Bytes,
// Text, Array, Map, Tagged, Bool, Null, Undefined, Simple, Float, Break or
// Cutoff.
type Value interface {
	cborValue()
}

// Uint is an unsigned integer (major type 0).
type Uint uint64

// NegInt is a negative integer (major type 1). The represented value is
// -1 - n, which may be smaller than math.MinInt64.
type NegInt uint64

// Int64 returns the value as an int64 and whether it fits.
func (n NegInt) Int64() (int64, bool) {
	if uint64(n) > 1<<63-1 {
		return 0, false
	}
	return -1 - int64(n), true
}

// String returns the decimal value.
func (n NegInt) String() string {
	if v, ok := n.Int64(); ok {
		return strconv.FormatInt(v, 10)
	}
	z := new(big.Int).SetUint64(uint64(n))
	z.Neg(z)
	z.Sub(z, big.NewInt(1))
	return z.String()
}

// Bytes is a byte string. For an indefinite-length string Data is the
// concatenation of its chunks.
type Bytes struct {
	Data   []byte  // materialized payload, at most the configured number of bytes
	Len    int64   // full payload length
	Chunks []int64 // chunk lengths of an indefinite-length string

	// Embedded holds the items of a byte string that decodes as nested CBOR.
	Embedded []*Item
}

// Text is a text string. When the payload is not valid UTF-8, Invalid is set
// and Data holds the raw bytes.
type Text struct {
	Data    []byte
	Len     int64
	Chunks  []int64
	Invalid bool
}

// Array is an array of items.
type Array struct {
	Items []*Item
}

// Pair is a map entry. Value is nil for a key without a value at the end of
// an indefinite-length map, or when decoding stopped before the value.
type Pair struct {
	Key   *Item
	Value *Item
}

// Map is a map with its entries in encoded order.
type Map struct {
	Pairs []Pair
}

// Tagged is a semantic tag and the item it encloses. Item is nil when
// decoding stopped before the enclosed item's header.
type Tagged struct {
	Tag  uint64
	Item *Item
}

// Bool is a simple value true or false.
type Bool bool

// Null is the simple value null.
type Null struct{}

// Undefined is the simple value undefined.
type Undefined struct{}

// Simple is an unassigned simple value.
type Simple uint8

// Float is a floating point value. Bits is the encoded width: 16, 32 or 64.
type Float struct {
	Value float64
	Bits  int
}

// Break is a stop code found where a data item was expected.
type Break struct{}

// Cutoff replaces an item nested deeper than the configured maximum. The
// item's bytes were consumed but its content was not materialized.
type Cutoff struct{}

func (Uint) cborValue()      {}
func (NegInt) cborValue()    {}
func (Bytes) cborValue()     {}
func (Text) cborValue()      {}
func (Array) cborValue()     {}
func (Map) cborValue()       {}
func (Tagged) cborValue()    {}
func (Bool) cborValue()      {}
func (Null) cborValue()      {}
func (Undefined) cborValue() {}
func (Simple) cborValue()    {}
func (Float) cborValue()     {}
func (Break) cborValue()     {}
func (Cutoff) cborValue()    {}

// TypeName returns the short type label used by the renderer.
func TypeName(v Value) string {
	switch v := v.(type) {
	case Uint:
		return "unsigned"
	case NegInt:
		return "negative"
	case Bytes:
		return "bytes"
	case Text:
		return "text"
	case Array:
		return "array"
	case Map:
		return "map"
	case Tagged:
		return "tag"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Undefined:
		return "undefined"
	case Simple:
		return "simple"
	case Float:
		return "float" + strconv.Itoa(v.Bits)
	case Break:
		return "break"
	case Cutoff:
		return "cutoff"
	}
	return "<invalid>"
}
