package cbor

import (
	"strconv"

	"github.com/synadia-labs/bindump.go/dump"
)

// Diag renders it in RFC 8949 diagnostic notation.
//
// Payloads cut at the configured MaxBytes are followed by a comment such as
// "/ 120 more bytes /", and content missing after a fatal error is written
// as "/ incomplete /". Decode with MaxBytes <= 0 to get every payload in
// full.
func Diag(it *Item) string {
	bb := dump.GetByteBuffer()
	defer dump.PutByteBuffer(bb)
	appendDiag(bb, it)
	return string(bb.Bytes())
}

func appendDiag(buf *dump.ByteBuffer, it *Item) {
	if it == nil || it.Value == nil {
		buf.WriteString(diagIncomplete)
		return
	}
	switch v := it.Value.(type) {
	case Uint:
		buf.AppendUint(uint64(v))
	case NegInt:
		buf.WriteString(v.String())
	case Bytes:
		if !it.Header.Indefinite {
			diagHex(buf, v.Data)
		} else {
			buf.WriteString("(_ ")
			for i, p := range splitChunks(v.Data, v.Chunks) {
				if i > 0 {
					buf.WriteString(", ")
				}
				diagHex(buf, p)
			}
			buf.WriteString(")")
		}
		diagClipped(buf, int64(len(v.Data)), v.Len)
	case Text:
		data := v.Data
		if int64(len(data)) < v.Len {
			data = dump.TrimPartialRune(data)
		}
		if !it.Header.Indefinite {
			diagText(buf, data)
		} else {
			buf.WriteString("(_ ")
			for i, p := range splitChunks(data, v.Chunks) {
				if i > 0 {
					buf.WriteString(", ")
				}
				diagText(buf, p)
			}
			buf.WriteString(")")
		}
		diagClipped(buf, int64(len(data)), v.Len)
	case Array:
		buf.WriteString("[")
		if it.Header.Indefinite {
			buf.WriteString("_ ")
		}
		for i, c := range v.Items {
			if i > 0 {
				buf.WriteString(", ")
			}
			appendDiag(buf, c)
		}
		diagMissing(buf, it, len(v.Items))
		buf.WriteString("]")
	case Map:
		buf.WriteString("{")
		if it.Header.Indefinite {
			buf.WriteString("_ ")
		}
		for i, p := range v.Pairs {
			if i > 0 {
				buf.WriteString(", ")
			}
			appendDiag(buf, p.Key) // key
			buf.WriteString(": ")
			appendDiag(buf, p.Value) // value
		}
		diagMissing(buf, it, len(v.Pairs))
		buf.WriteString("}")
	case Tagged:
		buf.AppendUint(v.Tag)
		buf.WriteString("(")
		appendDiag(buf, v.Item)
		buf.WriteString(")")
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Null:
		buf.WriteString("null")
	case Undefined:
		buf.WriteString("undefined")
	case Simple:
		buf.WriteString("simple(")
		buf.AppendUint(uint64(v))
		buf.WriteString(")")
	case Float:
		buf.WriteString(formatFloat(v))
	case Break:
		buf.WriteString("simple(31)")
	case Cutoff:
		buf.WriteString(dump.CutoffMarker)
	}
}

func diagHex(buf *dump.ByteBuffer, p []byte) {
	buf.WriteString("h'")
	buf.AppendHex(p)
	buf.WriteString("'")
}

const diagIncomplete = "/ incomplete /"

// diagMissing marks a definite container that holds fewer than its declared
// number of entries.
func diagMissing(buf *dump.ByteBuffer, it *Item, n int) {
	if it.Header.Indefinite || uint64(n) >= it.Header.Arg {
		return
	}
	if n > 0 {
		buf.WriteString(", ")
	}
	buf.WriteString(diagIncomplete)
}

// diagClipped notes payload bytes that were not kept.
func diagClipped(buf *dump.ByteBuffer, kept, total int64) {
	if kept >= total {
		return
	}
	buf.WriteString(" / ")
	buf.AppendInt(total - kept)
	buf.WriteString(" more bytes /")
}

func diagText(buf *dump.ByteBuffer, p []byte) {
	buf.WriteString(strconv.Quote(string(p)))
}

// splitChunks cuts the concatenated payload of an indefinite-length string
// back into its chunks. Chunks past the materialized data come out short or
// empty.
func splitChunks(data []byte, lens []int64) [][]byte {
	out := make([][]byte, 0, len(lens))
	for _, n := range lens {
		k := int(min(n, int64(len(data))))
		out = append(out, data[:k])
		data = data[k:]
	}
	return out
}
