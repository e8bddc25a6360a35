package tlv

import (
	"math/bits"

	"github.com/synadia-labs/bindump.go/dump"
)

// decodeBase128 decodes one base-128 subidentifier from the start of p and
// returns it with the number of bytes used. A value wider than 64 bits or a
// continuation bit on the last byte of p is dump.ErrBadLength.
func decodeBase128(p []byte) (uint64, int, error) {
	var ret uint64
	numBits := 0
	for i, b := range p {
		ret = ret<<7 | uint64(b&0x7f)
		if numBits == 0 {
			numBits = bits.Len8(b & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > 64 {
			return 0, i + 1, dump.ErrBadLength
		}
		if b&0x80 == 0 {
			return ret, i + 1, nil
		}
	}
	return ret, len(p), dump.ErrBadLength
}

// parseOID decodes the payload of an OBJECT IDENTIFIER or RELATIVE-OID. On a
// malformed subidentifier the arcs decoded so far are returned with the error.
//
// The first subidentifier of an absolute identifier packs two arcs as
// 40*x + y, where x is 0 or 1 with y <= 39, or x is 2 with no limit on y.
func parseOID(p []byte, relative bool) (OID, error) {
	o := OID{Relative: relative}
	first := !relative
	for len(p) > 0 {
		v, n, err := decodeBase128(p)
		p = p[n:]
		if err != nil {
			return o, err
		}
		if !first {
			o.Arcs = append(o.Arcs, v)
			continue
		}
		first = false
		if v < 80 {
			o.Arcs = append(o.Arcs, v/40, v%40)
		} else {
			o.Arcs = append(o.Arcs, 2, v-80)
		}
	}
	return o, nil
}
