// Package tlv decodes a stream of BER/DER tag-length-value units into a tree
// of Items for display, without a schema.
//
// Each unit starts with an identifier (class, constructed flag and tag
// number), followed by a definite or indefinite length. Constructed units
// contain further units; an indefinite-length unit ends with an
// end-of-contents marker (00 00). The decoder consumes the input strictly
// forward and keeps exact track of every byte, so the offset reported for a
// unit is the number of bytes preceding it:
//
//	d := tlv.NewDecoder(r, dump.DefaultConfig())
//	for {
//		it, err := d.Decode()
//		if err == io.EOF {
//			break
//		}
//		if it != nil {
//			tlv.Render(w, it, opts)
//		}
//		if err != nil && !dump.Resumable(err) {
//			return err
//		}
//	}
package tlv

import "strconv"

// Class is the class of a tag.
type Class uint8

// Tag classes as encoded in the top two bits of the identifier byte.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// String implements fmt.Stringer
func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "UNIVERSAL"
	case ClassApplication:
		return "APPLICATION"
	case ClassContextSpecific:
		return "CONTEXT"
	case ClassPrivate:
		return "PRIVATE"
	}
	return "<invalid>"
}

// Universal tag numbers (X.680 8.4)
const (
	TagEndOfContents    = 0
	TagBoolean          = 1
	TagInteger          = 2
	TagBitString        = 3
	TagOctetString      = 4
	TagNull             = 5
	TagOID              = 6
	TagObjectDescriptor = 7
	TagExternal         = 8
	TagReal             = 9
	TagEnumerated       = 10
	TagEmbeddedPDV      = 11
	TagUTF8String       = 12
	TagRelativeOID      = 13
	TagTime             = 14
	TagSequence         = 16
	TagSet              = 17
	TagNumericString    = 18
	TagPrintableString  = 19
	TagT61String        = 20
	TagVideotexString   = 21
	TagIA5String        = 22
	TagUTCTime          = 23
	TagGeneralizedTime  = 24
	TagGraphicString    = 25
	TagVisibleString    = 26
	TagGeneralString    = 27
	TagUniversalString  = 28
	TagCharacterString  = 29
	TagBMPString        = 30
	TagDate             = 31
	TagTimeOfDay        = 32
	TagDateTime         = 33
	TagDuration         = 34
)

var universalNames = [...]string{
	TagEndOfContents:    "End-of-contents",
	TagBoolean:          "BOOLEAN",
	TagInteger:          "INTEGER",
	TagBitString:        "BIT STRING",
	TagOctetString:      "OCTET STRING",
	TagNull:             "NULL",
	TagOID:              "OBJECT IDENTIFIER",
	TagObjectDescriptor: "ObjectDescriptor",
	TagExternal:         "EXTERNAL",
	TagReal:             "REAL",
	TagEnumerated:       "ENUMERATED",
	TagEmbeddedPDV:      "EMBEDDED PDV",
	TagUTF8String:       "UTF8String",
	TagRelativeOID:      "RELATIVE-OID",
	TagTime:             "TIME",
	TagSequence:         "SEQUENCE",
	TagSet:              "SET",
	TagNumericString:    "NumericString",
	TagPrintableString:  "PrintableString",
	TagT61String:        "TeletexString",
	TagVideotexString:   "VideotexString",
	TagIA5String:        "IA5String",
	TagUTCTime:          "UTCTime",
	TagGeneralizedTime:  "GeneralizedTime",
	TagGraphicString:    "GraphicString",
	TagVisibleString:    "VisibleString",
	TagGeneralString:    "GeneralString",
	TagUniversalString:  "UniversalString",
	TagCharacterString:  "CHARACTER STRING",
	TagBMPString:        "BMPString",
	TagDate:             "DATE",
	TagTimeOfDay:        "TIME-OF-DAY",
	TagDateTime:         "DATE-TIME",
	TagDuration:         "DURATION",
}

// TagName returns the name of a universal tag, or "" if the tag number is not
// assigned.
func TagName(tag uint32) string {
	if tag < uint32(len(universalNames)) {
		return universalNames[tag]
	}
	return ""
}

// label returns the display name of a tag: the universal type name, or the
// class and number in brackets ("[0]", "[APPLICATION 1]").
func label(class Class, tag uint32) string {
	switch class {
	case ClassUniversal:
		if name := TagName(tag); name != "" {
			return name
		}
		return "[UNIVERSAL " + strconv.FormatUint(uint64(tag), 10) + "]"
	case ClassContextSpecific:
		return "[" + strconv.FormatUint(uint64(tag), 10) + "]"
	default:
		return "[" + class.String() + " " + strconv.FormatUint(uint64(tag), 10) + "]"
	}
}
