// Package dump holds the plumbing shared by the tlv and cbor decoders: the
// position-tracking Source, decoder configuration, the error taxonomy, the
// diagnostics accumulator and rendering policy helpers.
//
// Both decoders read their input strictly forward. Source counts every byte
// handed out so that the offset reported for a unit always equals the number of
// bytes consumed before it.
package dump

import (
	"bufio"
	"bytes"
	"io"
)

// Source is a buffered, forward-only byte source that tracks the number of
// bytes consumed. It never seeks.
type Source struct {
	br  *bufio.Reader
	off int64
}

// NewSource returns a Source reading from r, starting at offset 0.
func NewSource(r io.Reader) *Source {
	return NewSourceAt(r, 0)
}

// NewSourceAt returns a Source reading from r whose first byte is reported at
// offset base. It is used for nested decoders over an already consumed
// payload, so that nested units report absolute positions.
func NewSourceAt(r io.Reader, base int64) *Source {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Source{br: br, off: base}
}

// Offset returns the position of the next unread byte.
func (s *Source) Offset() int64 { return s.off }

// ReadByte implements io.ByteReader. It returns io.EOF at the end of the
// input; callers decide whether that is a clean end or truncation.
func (s *Source) ReadByte() (byte, error) {
	b, err := s.br.ReadByte()
	if err != nil {
		return 0, err
	}
	s.off++
	return b, nil
}

// ReadFull fills p completely. A short read is ErrTruncated.
func (s *Source) ReadFull(p []byte) error {
	n, err := io.ReadFull(s.br, p)
	s.off += int64(n)
	return NoEOF(err)
}

// Discard skips n bytes. A short skip is ErrTruncated.
func (s *Source) Discard(n int64) error {
	for n > 0 {
		chunk := n
		if chunk > 1<<30 {
			chunk = 1 << 30
		}
		d, err := s.br.Discard(int(chunk))
		s.off += int64(d)
		n -= int64(d)
		if err != nil {
			return NoEOF(err)
		}
	}
	return nil
}

// ReadPayload consumes exactly n bytes and returns the first keep of them.
// A negative keep returns all n bytes. The returned slice grows with the data
// actually read, so a bogus length on a short input ends in ErrTruncated
// rather than a large allocation.
func (s *Source) ReadPayload(n int64, keep int) ([]byte, error) {
	k := n
	if keep >= 0 && int64(keep) < k {
		k = int64(keep)
	}
	var data []byte
	if k > 0 {
		if k <= 4096 {
			data = make([]byte, k)
			if err := s.ReadFull(data); err != nil {
				return nil, err
			}
		} else {
			var buf bytes.Buffer
			m, err := io.CopyN(&buf, s.br, k)
			s.off += m
			if err != nil {
				return nil, NoEOF(err)
			}
			data = buf.Bytes()
		}
	}
	if err := s.Discard(n - k); err != nil {
		return nil, err
	}
	return data, nil
}

// AtEOF reports whether the input is exhausted. It does not consume data.
func (s *Source) AtEOF() bool {
	_, err := s.br.Peek(1)
	return err != nil
}
