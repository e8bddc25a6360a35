package dump

import (
	"encoding/hex"
	"io"
	"strconv"
	"sync"
)

// ByteBuffer is a pooled output buffer used by the renderers. A rendered
// top-level unit is assembled in a ByteBuffer and written out in one call.
//
// Guidelines:
//   - Get a buffer with GetByteBuffer and return it with PutByteBuffer.
//   - Use Ensure(n) to grow capacity up-front when the size is known.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 1024)} }}

// GetByteBuffer obtains a pooled ByteBuffer. The buffer is Reset() before
// being returned so length is zero (capacity may be reused).
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// PutByteBuffer returns the buffer to the pool after Resetting length to zero.
func PutByteBuffer(bb *ByteBuffer) { bb.Reset(); bbPool.Put(bb) }

// Bytes returns the underlying bytes.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// Len returns length.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Reset resets the length to zero; capacity is unchanged.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Ensure ensures there is room for at least n more bytes without reallocation.
func (bb *ByteBuffer) Ensure(n int) {
	need := len(bb.b) + n
	if cap(bb.b) >= need {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 1024
	}
	for c < need {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

// Extend grows the buffer by n bytes and returns a slice to the newly
// appended region for direct writes. The buffer length is advanced by n.
func (bb *ByteBuffer) Extend(n int) []byte {
	old := len(bb.b)
	bb.Ensure(n)
	bb.b = bb.b[:old+n]
	return bb.b[old:]
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.b = append(bb.b, p...)
	return len(p), nil
}

// WriteString appends a string.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.b = append(bb.b, c)
	return nil
}

// WriteTo implements io.WriterTo and leaves the buffer empty.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.b)
	bb.Reset()
	return int64(n), err
}

// Text-output appenders used by the renderers.

// AppendInt appends the decimal form of i.
func (bb *ByteBuffer) AppendInt(i int64) *ByteBuffer {
	bb.b = strconv.AppendInt(bb.b, i, 10)
	return bb
}

// AppendUint appends the decimal form of u.
func (bb *ByteBuffer) AppendUint(u uint64) *ByteBuffer {
	bb.b = strconv.AppendUint(bb.b, u, 10)
	return bb
}

// AppendNumber appends n right-aligned in a column of the given width, in
// hex (upper case, zero padded) or decimal.
func (bb *ByteBuffer) AppendNumber(n int64, width int, hexadecimal bool) *ByteBuffer {
	var tmp [24]byte
	var s []byte
	pad := byte(' ')
	if hexadecimal {
		s = strconv.AppendInt(tmp[:0], n, 16)
		for i, c := range s {
			if c >= 'a' && c <= 'f' {
				s[i] = c - 'a' + 'A'
			}
		}
		pad = '0'
	} else {
		s = strconv.AppendInt(tmp[:0], n, 10)
	}
	for i := len(s); i < width; i++ {
		bb.b = append(bb.b, pad)
	}
	bb.b = append(bb.b, s...)
	return bb
}

// AppendHex appends p as lower-case hex without separators.
func (bb *ByteBuffer) AppendHex(p []byte) *ByteBuffer {
	d := bb.Extend(hex.EncodedLen(len(p)))
	hex.Encode(d, p)
	return bb
}

// AppendSpacedHex appends p as upper-case hex pairs separated by spaces,
// breaking the line every perLine bytes. Continuation lines start with
// prefix.
func (bb *ByteBuffer) AppendSpacedHex(p []byte, perLine int, prefix string) *ByteBuffer {
	const digits = "0123456789ABCDEF"
	for i, c := range p {
		if i > 0 {
			if perLine > 0 && i%perLine == 0 {
				bb.b = append(bb.b, '\n')
				bb.b = append(bb.b, prefix...)
			} else {
				bb.b = append(bb.b, ' ')
			}
		}
		bb.b = append(bb.b, digits[c>>4], digits[c&0x0f])
	}
	return bb
}

// AppendRepeat appends s n times.
func (bb *ByteBuffer) AppendRepeat(s string, n int) *ByteBuffer {
	for ; n > 0; n-- {
		bb.b = append(bb.b, s...)
	}
	return bb
}

// AppendQuoted appends s as a double-quoted Go string literal.
func (bb *ByteBuffer) AppendQuoted(s string) *ByteBuffer {
	bb.b = strconv.AppendQuote(bb.b, s)
	return bb
}
