// Package cbor decodes a stream of CBOR data items (RFC 8949) into a tree of
// Items for display, without a schema.
//
// The decoder reads each item's initial byte and argument, resolves definite
// and indefinite lengths, recurses into arrays, maps and tags, and keeps exact
// track of the number of bytes consumed. Malformed headers stop the stream;
// structural problems inside a value are recorded and decoding resumes with the
// next top-level item:
//
//	d := cbor.NewDecoder(r, dump.DefaultConfig())
//	for {
//		it, err := d.Decode()
//		if err == io.EOF {
//			break
//		}
//		if it != nil {
//			cbor.Render(w, it, opts)
//		}
//		if err != nil && !dump.Resumable(err) {
//			return err
//		}
//	}
package cbor

// CBOR major types (3 bits)
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // float, simple values, break
)

// Additional info values (5 bits)
const (
	// 0-23: literal value
	addInfoDirect     = 23 // max direct value
	addInfoUint8      = 24 // 1-byte uint8 follows
	addInfoUint16     = 25 // 2-byte uint16 follows
	addInfoUint32     = 26 // 4-byte uint32 follows
	addInfoUint64     = 27 // 8-byte uint64 follows
	addInfoIndefinite = 31 // indefinite length (for bytes, text, array, map)
)

// Simple values in major type 7
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// Common CBOR semantic tags
const (
	tagDateTimeString   = 0     // RFC3339 date/time string
	tagEpochDateTime    = 1     // Unix timestamp (int or float)
	tagPosBignum        = 2     // Positive bignum
	tagNegBignum        = 3     // Negative bignum
	tagDecimalFrac      = 4     // Decimal fraction
	tagBigfloat         = 5     // Bigfloat
	tagBase64URL        = 21    // Expected base64url encoding
	tagBase64           = 22    // Expected base64 encoding
	tagBase16           = 23    // Expected base16 encoding
	tagCBOR             = 24    // Embedded CBOR data item
	tagURI              = 32    // URI
	tagBase64URLString  = 33    // base64url
	tagBase64String     = 34    // base64
	tagRegexp           = 35    // Regular expression
	tagMIME             = 36    // MIME message
	tagUUID             = 37    // Binary UUID
	tagSelfDescribeCBOR = 55799 // Self-describe CBOR (0xd9d9f7)
)

// breakByte is the stop code closing indefinite-length items.
const breakByte = byte(majorTypeSimple<<5 | simpleBreak)

// getMajorType extracts the major type from a CBOR initial byte
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

// TagName returns the name of a well-known semantic tag, or "" if the tag is
// not known.
func TagName(tag uint64) string {
	switch tag {
	case tagDateTimeString:
		return "date/time string"
	case tagEpochDateTime:
		return "epoch-based date/time"
	case tagPosBignum:
		return "positive bignum"
	case tagNegBignum:
		return "negative bignum"
	case tagDecimalFrac:
		return "decimal fraction"
	case tagBigfloat:
		return "bigfloat"
	case tagBase64URL:
		return "base64url encoding"
	case tagBase64:
		return "base64 encoding"
	case tagBase16:
		return "base16 encoding"
	case tagCBOR:
		return "encoded CBOR data item"
	case tagURI:
		return "URI"
	case tagBase64URLString:
		return "base64url"
	case tagBase64String:
		return "base64"
	case tagRegexp:
		return "regular expression"
	case tagMIME:
		return "MIME message"
	case tagUUID:
		return "UUID"
	case tagSelfDescribeCBOR:
		return "self-describe CBOR"
	}
	return ""
}

// MajorName returns the name of a major type.
func MajorName(major uint8) string {
	switch major {
	case majorTypeUint:
		return "unsigned"
	case majorTypeNegInt:
		return "negative"
	case majorTypeBytes:
		return "bytes"
	case majorTypeText:
		return "text"
	case majorTypeArray:
		return "array"
	case majorTypeMap:
		return "map"
	case majorTypeTag:
		return "tag"
	case majorTypeSimple:
		return "simple"
	}
	return "<invalid>"
}
