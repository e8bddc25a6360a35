package dump

import (
	"errors"
	"io"
	"strconv"
)

// Severity classifies how a decode problem affects the stream.
type Severity uint8

const (
	// Fatal problems abort the unit being parsed. The position of the next
	// unit is unknown afterwards, so the stream stops.
	Fatal Severity = iota
	// Recoverable problems are structural errors inside a value. The unit was
	// consumed completely and decoding resumes at the next top-level unit.
	Recoverable
	// Warning problems are content anomalies. They are counted but never
	// returned from Decode.
	Warning
)

// String implements fmt.Stringer
func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	case Recoverable:
		return "error"
	case Warning:
		return "warning"
	default:
		return "<invalid>"
	}
}

var (
	// ErrTruncated is returned when the source ends inside a header or a
	// payload.
	ErrTruncated error = &kindError{"truncated data", Fatal}

	// ErrTagTooLong is returned when a high tag number needs more
	// continuation bytes than the decoder accepts.
	ErrTagTooLong error = &kindError{"tag number too long", Fatal}

	// ErrLengthTooLong is returned when a long-form length uses more length
	// bytes than the decoder accepts.
	ErrLengthTooLong error = &kindError{"length too long", Fatal}

	// ErrChildOverrunsParent is returned when a nested unit extends past the
	// declared end of its container.
	ErrChildOverrunsParent error = &kindError{"data value exceeds parent", Fatal}

	// ErrInvalidAdditionalInfo is returned for reserved additional info values.
	ErrInvalidAdditionalInfo error = &kindError{"invalid additional info", Fatal}

	// ErrInvalidMajorType is returned when a major type is used with an
	// encoding it does not permit (such as an indefinite-length integer).
	ErrInvalidMajorType error = &kindError{"invalid major type for encoding", Fatal}

	// ErrIndefinitePrimitive is returned for a primitive TLV that claims the
	// indefinite-length form.
	ErrIndefinitePrimitive error = &kindError{"indefinite-length primitive data value", Fatal}

	// ErrRecursion is returned when the hard recursion limit is reached while
	// decoding children past the nesting cutoff.
	ErrRecursion error = &kindError{"recursion limit reached", Fatal}

	// ErrChunkTypeMismatch is recorded when an indefinite-length string
	// contains a chunk of a different major type.
	ErrChunkTypeMismatch error = &kindError{"chunk type does not match indefinite-length string", Recoverable}

	// ErrNestedIndefiniteChunk is recorded when an indefinite-length string
	// contains an indefinite-length chunk.
	ErrNestedIndefiniteChunk error = &kindError{"nested indefinite-length chunk", Recoverable}

	// ErrDanglingMapKey is recorded when an indefinite-length map ends after a
	// key without a value.
	ErrDanglingMapKey error = &kindError{"map key without value", Recoverable}

	// ErrUnexpectedBreak is recorded when a break marker appears where a data
	// item is expected.
	ErrUnexpectedBreak error = &kindError{"unexpected break", Recoverable}

	// ErrZeroLength is recorded for a zero-length value of a type that needs
	// content, unless zero-length items are allowed.
	ErrZeroLength error = &kindError{"zero-length value", Recoverable}

	// ErrNonCanonicalLength is a warning for a length or argument that is not
	// encoded in its shortest form.
	ErrNonCanonicalLength error = &kindError{"non-canonical length encoding", Warning}

	// ErrInvalidUTF8 is a warning for a text value that is not valid UTF-8.
	ErrInvalidUTF8 error = &kindError{"invalid UTF-8 in text string", Warning}

	// ErrUnknownTagOrType is a warning for a tag or type the decoder does not
	// know. The payload is kept as opaque bytes.
	ErrUnknownTagOrType error = &kindError{"unknown tag or type", Warning}

	// ErrUnexpectedEOC is a warning for an end-of-contents marker outside an
	// indefinite-length container.
	ErrUnexpectedEOC error = &kindError{"unexpected end of contents", Warning}

	// ErrBadLength is a warning for a value whose length does not fit its
	// type (e.g. a two-byte BOOLEAN).
	ErrBadLength error = &kindError{"unexpected length for type", Warning}
)

// Error is the interface satisfied
// by all of the errors that originate
// from this module.
type Error interface {
	error

	// Resumable returns whether
	// or not decoding can continue
	// with the next top-level unit.
	Resumable() bool
}

type kindError struct {
	msg      string
	severity Severity
}

func (e *kindError) Error() string   { return e.msg }
func (e *kindError) Resumable() bool { return e.severity != Fatal }

// SeverityOf returns the severity of err. Errors that do not originate from
// this module (e.g. I/O errors from the underlying reader) are fatal.
func SeverityOf(err error) Severity {
	var k *kindError
	if errors.As(err, &k) {
		return k.severity
	}
	return Fatal
}

// Resumable returns whether or not the error leaves the stream positioned at
// the start of the next top-level unit.
func Resumable(err error) bool {
	if e, ok := err.(Error); ok {
		return e.Resumable()
	}
	return SeverityOf(err) != Fatal
}

// Cause returns the underlying cause of an error that has been wrapped
// with position information.
func Cause(err error) error {
	if e, ok := err.(*SyntaxError); ok && e.Err != nil {
		return e.Err
	}
	return err
}

// SyntaxError represents a problem in the encoded input. It carries the
// location of the unit containing the problem and a label describing that
// unit.
type SyntaxError struct {
	Err error // underlying error

	// ByteOffset is the location of the error. For truncation it is the
	// position at which more data was expected, otherwise it is the start of
	// the header of the offending unit.
	ByteOffset int64

	// Label describes the unit, e.g. "SEQUENCE" or "array".
	Label string
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Error() string {
	b := []byte("syntax error")
	if e.Label != "" {
		b = append(b, " in "...)
		b = append(b, e.Label...)
	}
	b = strconv.AppendInt(append(b, " at offset "...), e.ByteOffset, 10)
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// Resumable delegates to the underlying error.
func (e *SyntaxError) Resumable() bool { return Resumable(e.Err) }

// WrapError adds position information to err. A nil err stays nil and an
// existing SyntaxError is not wrapped twice.
func WrapError(err error, offset int64, label string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*SyntaxError); ok {
		return err
	}
	return &SyntaxError{Err: err, ByteOffset: offset, Label: label}
}

// NoEOF converts an end of input inside a unit into ErrTruncated. Other errors
// pass through.
func NoEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
