package dump

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceOffsets(t *testing.T) {
	s := NewSource(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}))
	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), b)
	require.Equal(t, int64(1), s.Offset())

	p, err := s.ReadPayload(4, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, p)
	require.Equal(t, int64(5), s.Offset())
	require.False(t, s.AtEOF())

	_, err = s.ReadPayload(3, -1)
	require.ErrorIs(t, err, ErrTruncated)
	require.Equal(t, int64(6), s.Offset())
	require.True(t, s.AtEOF())

	_, err = s.ReadByte()
	require.Equal(t, io.EOF, err)
}

func TestSourceAt(t *testing.T) {
	s := NewSourceAt(strings.NewReader("abc"), 100)
	require.NoError(t, s.Discard(2))
	require.Equal(t, int64(102), s.Offset())
	require.ErrorIs(t, s.Discard(2), ErrTruncated)
	require.Equal(t, int64(103), s.Offset())
}

func TestReadPayloadLarge(t *testing.T) {
	data := bytes.Repeat([]byte{0xab}, 10000)
	s := NewSource(bytes.NewReader(data))
	p, err := s.ReadPayload(10000, -1)
	require.NoError(t, err)
	require.Equal(t, data, p)
	require.Equal(t, int64(10000), s.Offset())
}

func TestSeverity(t *testing.T) {
	require.Equal(t, Fatal, SeverityOf(ErrTruncated))
	require.Equal(t, Recoverable, SeverityOf(ErrZeroLength))
	require.Equal(t, Warning, SeverityOf(ErrInvalidUTF8))
	require.Equal(t, Fatal, SeverityOf(io.ErrClosedPipe))

	wrapped := WrapError(ErrDanglingMapKey, 7, "map")
	require.True(t, Resumable(wrapped))
	require.Equal(t, Recoverable, SeverityOf(wrapped))
	require.Equal(t, ErrDanglingMapKey, Cause(wrapped))
	require.False(t, Resumable(WrapError(ErrTruncated, 0, "")))
}

func TestSyntaxError(t *testing.T) {
	err := WrapError(ErrChildOverrunsParent, 12, "SEQUENCE")
	require.EqualError(t, err, "syntax error in SEQUENCE at offset 12: data value exceeds parent")
	require.ErrorIs(t, err, ErrChildOverrunsParent)
	require.Same(t, err, WrapError(err, 0, "other"))
	require.Nil(t, WrapError(nil, 0, ""))

	require.EqualError(t, WrapError(ErrTruncated, 3, ""), "syntax error at offset 3: truncated data")
}

func TestUnjoin(t *testing.T) {
	require.Nil(t, Unjoin(nil))
	joined := errors.Join(errors.Join(nil, ErrBadLength), ErrInvalidUTF8)
	require.Equal(t, []error{ErrBadLength, ErrInvalidUTF8}, Unjoin(joined))
	require.Equal(t, []error{ErrTruncated}, Unjoin(ErrTruncated))
}

func TestRecorder(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRecorder(&cfg)
	r.Record(ErrBadLength, 0, "BOOLEAN")
	r.Record(ErrZeroLength, 1, "INTEGER")
	r.Record(WrapError(ErrTruncated, 2, "SEQUENCE"), 2, "SEQUENCE")
	require.Equal(t, Diagnostics{Errors: 2, Warnings: 1}, r.Diagnostics)
	require.False(t, r.Clean())

	sum := r.Diagnostics.Add(Diagnostics{Errors: 1})
	require.Equal(t, Diagnostics{Errors: 3, Warnings: 1}, sum)
}

func TestConfigKeep(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, DefaultMaxBytes, cfg.Keep())
	cfg.MaxBytes = 0
	require.Equal(t, -1, cfg.Keep())
	require.NotNil(t, cfg.Log())
}

func TestByteBuffer(t *testing.T) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)

	bb.AppendNumber(5, 4, false).WriteByte(' ')
	bb.AppendNumber(0xab, 4, true).WriteByte(' ')
	bb.AppendNumber(123456, 4, false)
	require.Equal(t, "   5 00AB 123456", string(bb.Bytes()))

	bb.Reset()
	bb.AppendSpacedHex([]byte{0, 1, 2, 0xfe, 0xff}, 2, "> ")
	require.Equal(t, "00 01\n> 02 FE\n> FF", string(bb.Bytes()))

	bb.Reset()
	bb.AppendHex([]byte{0xca, 0xfe}).AppendRepeat("-", 3).AppendQuoted("a\"b")
	bb.AppendInt(-7).AppendUint(8)
	require.Equal(t, `cafe---"a\"b"-78`, string(bb.Bytes()))

	var sb strings.Builder
	n, err := bb.WriteTo(&sb)
	require.NoError(t, err)
	require.Equal(t, int64(bb.Len()), n)
}

func TestPolicy(t *testing.T) {
	require.True(t, Printable([]byte("Hello, world!")))
	require.False(t, Printable([]byte{'a', 0x7f}))
	require.True(t, Printable(nil))

	shown, more := Truncate([]byte("abcdef"), 10, 4)
	require.Equal(t, []byte("abcd"), shown)
	require.Equal(t, int64(6), more)

	shown, more = Truncate([]byte("abc"), 3, 0)
	require.Equal(t, []byte("abc"), shown)
	require.Zero(t, more)

	require.Equal(t, []byte("a"), TrimPartialRune([]byte{'a', 0xc3}))
	require.Equal(t, []byte("a"), TrimPartialRune([]byte{'a', 0xe2, 0x82}))
	require.Equal(t, []byte("aé"), TrimPartialRune([]byte("aé")))
	require.Equal(t, []byte{0xc3, 0x28}, TrimPartialRune([]byte{0xc3, 0x28}))
}
