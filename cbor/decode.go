package cbor

import (
	"bytes"
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/synadia-labs/bindump.go/dump"
)

// A Decoder reads a stream of CBOR data items.
type Decoder struct {
	src *dump.Source
	cfg dump.Config
	rec *dump.Recorder

	// soft is the first recoverable error of the current top-level item.
	soft error
	// stopped is set once a fatal error is attached to an item.
	stopped bool
	n       int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, cfg dump.Config) *Decoder {
	return &Decoder{
		src: dump.NewSource(r),
		cfg: cfg,
		rec: dump.NewRecorder(&cfg),
	}
}

// Decode reads the next top-level data item.
//
// At the end of the input Decode returns io.EOF. A fatal problem returns a
// *dump.SyntaxError and the stream cannot continue. The item is still
// returned when its header was read: it holds what was decoded up to the
// problem, and the innermost incomplete item carries the error in Err.
//
// When the item contains a recoverable problem, the complete item is
// returned together with the first such error; dump.Resumable reports true
// for it and the next call continues with the following top-level item.
// Warnings never surface here; they are attached to Item.Err and counted in
// Diagnostics.
func (d *Decoder) Decode() (*Item, error) {
	d.soft = nil
	d.stopped = false
	h, err := readHeader(d.src)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, d.failHeader(err, h)
	}
	var it *Item
	if h.IsBreak() {
		it = d.strayBreak(h)
	} else {
		it, err = d.decodeValue(h, 0)
	}
	d.n++
	if err != nil {
		return it, err
	}
	return it, d.soft
}

// Diagnostics returns the counts accumulated so far.
func (d *Decoder) Diagnostics() dump.Diagnostics { return d.rec.Diagnostics }

// InputOffset returns the number of bytes consumed so far.
func (d *Decoder) InputOffset() int64 { return d.src.Offset() }

// Count returns the number of top-level items decoded so far.
func (d *Decoder) Count() int { return d.n }

// fail records a fatal problem and returns it with position information.
func (d *Decoder) fail(err error, offset int64, label string) error {
	err = dump.NoEOF(err)
	d.rec.Record(err, offset, label)
	return dump.WrapError(err, offset, label)
}

// failHeader is fail for a problem raised by readHeader. Truncation is
// reported where more data was expected, anything else at the header.
func (d *Decoder) failHeader(err error, h Header) error {
	if err == io.EOF {
		return d.fail(err, d.src.Offset(), "")
	}
	if errors.Is(err, dump.ErrTruncated) {
		return d.fail(err, d.src.Offset(), MajorName(h.Major))
	}
	return d.fail(err, h.Offset, h.String())
}

// note records a non-fatal problem of it.
func (d *Decoder) note(it *Item, err error) {
	d.rec.Record(err, it.Offset, it.Header.String())
	it.Err = errors.Join(it.Err, err)
	if d.soft == nil && dump.SeverityOf(err) == dump.Recoverable {
		d.soft = dump.WrapError(err, it.Offset, it.Header.String())
	}
}

// stop attaches a fatal error to it unless an item nested in it already
// carries the error.
func (d *Decoder) stop(it *Item, err error) {
	if d.stopped {
		return
	}
	d.stopped = true
	it.Err = errors.Join(it.Err, err)
}

func (d *Decoder) strayBreak(h Header) *Item {
	it := &Item{Header: h, Value: Break{}, Offset: h.Offset, Size: 1}
	d.note(it, dump.ErrUnexpectedBreak)
	return it
}

// decodeChild reads and decodes one item where a data item is expected inside
// a definite-length container.
func (d *Decoder) decodeChild(depth int) (*Item, error) {
	h, err := readHeader(d.src)
	if err != nil {
		return nil, d.failHeader(err, h)
	}
	if h.IsBreak() {
		return d.strayBreak(h), nil
	}
	return d.decodeValue(h, depth)
}

// decodeValue decodes the content following h. depth is the nesting level of
// the item, 0 for a top-level item. The item is returned even on a fatal
// error, with the content decoded so far.
func (d *Decoder) decodeValue(h Header, depth int) (*Item, error) {
	it := &Item{Header: h, Offset: h.Offset}
	if h.NonCanonical && d.cfg.WarnNonCanonical {
		d.note(it, dump.ErrNonCanonicalLength)
	}

	var err error
	switch {
	case depth > d.cfg.MaxDepth && d.cfg.SkipBeyondDepth:
		it.Value = Cutoff{}
		err = d.skip(h)
	case depth > dump.RecursionLimit:
		err = d.fail(dump.ErrRecursion, h.Offset, h.String())
	default:
		err = d.decodeContent(it, depth)
		if depth > d.cfg.MaxDepth {
			// decoded for its diagnostics only
			it.Value = Cutoff{}
		}
	}
	it.Size = d.src.Offset() - it.Offset
	if err != nil {
		d.stop(it, err)
	}
	return it, err
}

func (d *Decoder) decodeContent(it *Item, depth int) error {
	h := it.Header
	switch h.Major {
	case majorTypeUint:
		it.Value = Uint(h.Arg)
	case majorTypeNegInt:
		it.Value = NegInt(h.Arg)
	case majorTypeBytes:
		if h.Indefinite {
			return d.decodeIndefiniteString(it, depth)
		}
		return d.decodeBytes(it, depth)
	case majorTypeText:
		if h.Indefinite {
			return d.decodeIndefiniteString(it, depth)
		}
		return d.decodeText(it)
	case majorTypeArray:
		if h.Indefinite {
			return d.decodeIndefiniteArray(it, depth)
		}
		return d.decodeArray(it, depth)
	case majorTypeMap:
		if h.Indefinite {
			return d.decodeIndefiniteMap(it, depth)
		}
		return d.decodeMap(it, depth)
	case majorTypeTag:
		return d.decodeTag(it, depth)
	case majorTypeSimple:
		d.decodeSimple(it)
	}
	return nil
}

// payloadLen checks a string length against what a stream can hold.
func (d *Decoder) payloadLen(h Header) (int64, error) {
	if h.Arg > math.MaxInt64 {
		return 0, d.fail(dump.ErrLengthTooLong, h.Offset, h.String())
	}
	return int64(h.Arg), nil
}

func (d *Decoder) readPayload(h Header, keep int) ([]byte, error) {
	n, err := d.payloadLen(h)
	if err != nil {
		return nil, err
	}
	p, err := d.src.ReadPayload(n, keep)
	if err != nil {
		return nil, d.fail(err, d.src.Offset(), h.String())
	}
	return p, nil
}

func (d *Decoder) decodeBytes(it *Item, depth int) error {
	h := it.Header
	keep := d.cfg.Keep()
	if d.cfg.CheckEncapsulated && h.Arg <= dump.MaxEncapsulated {
		keep = -1
	}
	data, err := d.readPayload(h, keep)
	if err != nil {
		return err
	}
	b := Bytes{Data: data, Len: int64(h.Arg)}
	if d.cfg.CheckEncapsulated && int64(len(data)) == b.Len && len(data) >= 2 {
		b.Embedded = d.decodeEmbedded(data, h.Offset+int64(h.Size), depth+1, true)
	}
	if keep < 0 && d.cfg.MaxBytes > 0 && b.Embedded == nil && len(data) > d.cfg.MaxBytes {
		b.Data = data[:d.cfg.MaxBytes:d.cfg.MaxBytes]
	}
	it.Value = b
	return nil
}

func (d *Decoder) decodeText(it *Item) error {
	h := it.Header
	data, err := d.readPayload(h, d.cfg.Keep())
	if err != nil {
		return err
	}
	t := Text{Data: data, Len: int64(h.Arg)}
	if !validText(data, t.Len) {
		t.Invalid = true
		d.note(it, dump.ErrInvalidUTF8)
	}
	it.Value = t
	return nil
}

// validText validates a possibly truncated text payload. A rune cut at the
// materialization limit is not an error.
func validText(p []byte, total int64) bool {
	if int64(len(p)) < total {
		p = dump.TrimPartialRune(p)
	}
	return utf8.Valid(p)
}

func (d *Decoder) decodeArray(it *Item, depth int) error {
	n := it.Header.Arg
	items := make([]*Item, 0, min(n, 1024))
	for i := uint64(0); i < n; i++ {
		child, err := d.decodeChild(depth + 1)
		if child != nil {
			items = append(items, child)
		}
		if err != nil {
			it.Value = Array{Items: items}
			return err
		}
	}
	it.Value = Array{Items: items}
	return nil
}

func (d *Decoder) decodeMap(it *Item, depth int) error {
	n := it.Header.Arg
	pairs := make([]Pair, 0, min(n, 1024))
	for i := uint64(0); i < n; i++ {
		k, err := d.decodeChild(depth + 1)
		if err != nil {
			if k != nil {
				pairs = append(pairs, Pair{Key: k})
			}
			it.Value = Map{Pairs: pairs}
			return err
		}
		v, err := d.decodeChild(depth + 1)
		pairs = append(pairs, Pair{Key: k, Value: v})
		if err != nil {
			it.Value = Map{Pairs: pairs}
			return err
		}
	}
	it.Value = Map{Pairs: pairs}
	return nil
}

func (d *Decoder) decodeTag(it *Item, depth int) error {
	tag := it.Header.Arg
	content, err := d.decodeChild(depth + 1)
	if err != nil {
		it.Value = Tagged{Tag: tag, Item: content}
		return err
	}
	if tag == tagCBOR && d.cfg.CheckEncapsulated {
		if b, ok := content.Value.(Bytes); ok && b.Embedded == nil && int64(len(b.Data)) == b.Len {
			base := content.Offset + int64(content.Header.Size)
			if b.Embedded = d.decodeEmbedded(b.Data, base, depth+2, false); b.Embedded != nil {
				content.Value = b
			}
		}
	}
	it.Value = Tagged{Tag: tag, Item: content}
	return nil
}

func (d *Decoder) decodeSimple(it *Item) {
	h := it.Header
	switch h.Info {
	case simpleFalse:
		it.Value = Bool(false)
	case simpleTrue:
		it.Value = Bool(true)
	case simpleNull:
		it.Value = Null{}
	case simpleUndefined:
		it.Value = Undefined{}
	case simpleFloat16, simpleFloat32, simpleFloat64:
		it.Value = decodeFloat(h)
	default:
		// 0..19 and the two-byte form: unassigned simple values
		it.Value = Simple(h.Arg)
		d.note(it, dump.ErrUnknownTagOrType)
	}
}

// decodeEmbedded tries to decode p as a sequence of CBOR items located at
// base. When structured is set, only a payload starting with an array, map or
// tag is tried. The result is nil unless every byte of p decodes without any
// diagnostic.
func (d *Decoder) decodeEmbedded(p []byte, base int64, depth int, structured bool) []*Item {
	if len(p) == 0 || len(p) > dump.MaxEncapsulated {
		return nil
	}
	if structured {
		switch getMajorType(p[0]) {
		case majorTypeArray, majorTypeMap, majorTypeTag:
		default:
			return nil
		}
	}
	cfg := d.cfg
	cfg.Logger = nil
	sub := &Decoder{
		src: dump.NewSourceAt(bytes.NewReader(p), base),
		cfg: cfg,
		rec: dump.NewRecorder(&cfg),
	}
	var items []*Item
	for {
		h, err := readHeader(sub.src)
		if err == io.EOF {
			break
		}
		if err != nil || h.IsBreak() {
			return nil
		}
		it, err := sub.decodeValue(h, depth)
		if err != nil || !sub.rec.Clean() {
			return nil
		}
		items = append(items, it)
	}
	return items
}

// skipFrame is an open container on the skip stack. left counts the
// remaining items of a definite container.
type skipFrame struct {
	left       uint64
	indefinite bool
}

// skip consumes the content of the item with header h without materializing
// it. Open containers are tracked on an explicit stack, so arbitrarily deep
// input does not grow the call stack.
func (d *Decoder) skip(h Header) error {
	var stack []skipFrame
	for {
		switch h.Major {
		case majorTypeBytes, majorTypeText:
			if h.Indefinite {
				stack = append(stack, skipFrame{indefinite: true})
				break
			}
			n, err := d.payloadLen(h)
			if err != nil {
				return err
			}
			if err := d.src.Discard(n); err != nil {
				return d.fail(err, d.src.Offset(), h.String())
			}
		case majorTypeArray, majorTypeMap:
			n := h.Arg
			if h.Major == majorTypeMap {
				n = min(n, math.MaxUint64/2) * 2
			}
			if h.Indefinite || n > 0 {
				stack = append(stack, skipFrame{left: n, indefinite: h.Indefinite})
			}
		case majorTypeTag:
			stack = append(stack, skipFrame{left: 1})
		}

		for {
			for len(stack) > 0 && !stack[len(stack)-1].indefinite && stack[len(stack)-1].left == 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil
			}
			next, err := readHeader(d.src)
			if err != nil {
				return d.failHeader(err, next)
			}
			top := &stack[len(stack)-1]
			if next.IsBreak() && top.indefinite {
				stack = stack[:len(stack)-1]
				continue
			}
			if !top.indefinite {
				top.left--
			}
			h = next
			break
		}
	}
}
