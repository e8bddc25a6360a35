package tlv

import (
	"bytes"
	"errors"
	"io"

	"github.com/synadia-labs/bindump.go/dump"
)

// noLimit marks a unit that is not enclosed by a definite-length parent.
const noLimit = -1

// A Decoder reads a stream of top-level TLV units.
type Decoder struct {
	src *dump.Source
	cfg dump.Config
	rec *dump.Recorder

	// soft is the first recoverable error of the current top-level unit.
	soft error
	// stopped is set once a fatal error is attached to a unit.
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

// Decode reads the next top-level unit.
//
// At the end of the input Decode returns io.EOF. A fatal problem returns a
// *dump.SyntaxError and the stream cannot continue. The unit is still
// returned when its header was read: it holds the children decoded up to the
// problem, and the innermost incomplete unit carries the error in Err.
//
// When the unit contains a recoverable problem, the complete unit is
// returned together with the first such error; dump.Resumable reports true
// for it and the next call continues with the following unit. Warnings are
// attached to Item.Err and counted in Diagnostics.
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
	it, err := d.decodeValue(h, 0, noLimit)
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

// Count returns the number of top-level units decoded so far.
func (d *Decoder) Count() int { return d.n }

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
		return d.fail(err, d.src.Offset(), h.String())
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

// stop attaches a fatal error to it unless a unit nested in it already
// carries the error.
func (d *Decoder) stop(it *Item, err error) {
	if d.stopped {
		return
	}
	d.stopped = true
	it.Err = errors.Join(it.Err, err)
}

// checkLimit reports a child whose header or declared payload crosses the end
// of its enclosing definite-length parent.
func (d *Decoder) checkLimit(h Header, limit int64) error {
	if limit == noLimit {
		return nil
	}
	if pos := d.src.Offset(); pos > limit || (!h.Indefinite && pos+h.Length > limit) {
		return d.fail(dump.ErrChildOverrunsParent, h.Offset, h.String())
	}
	return nil
}

// decodeChild reads and decodes one unit inside a constructed unit whose
// children must end by limit.
func (d *Decoder) decodeChild(h Header, depth int, limit int64) (*Item, error) {
	if err := d.checkLimit(h, limit); err != nil {
		it := &Item{Header: h, Offset: h.Offset, Size: d.src.Offset() - h.Offset}
		d.stop(it, err)
		return it, err
	}
	it, err := d.decodeValue(h, depth, limit)
	if err == nil && limit != noLimit && d.src.Offset() > limit {
		err = d.fail(dump.ErrChildOverrunsParent, h.Offset, h.String())
		d.stop(it, err)
	}
	return it, err
}

// decodeValue decodes the payload following h. depth is the nesting level of
// the unit, 0 for a top-level unit. The unit is returned even on a fatal
// error, with the children decoded so far.
func (d *Decoder) decodeValue(h Header, depth int, limit int64) (*Item, error) {
	it := &Item{Header: h, Offset: h.Offset}
	if h.NonCanonical && d.cfg.WarnNonCanonical {
		d.note(it, dump.ErrNonCanonicalLength)
	}
	if h.IsEOC() {
		it.Value = EndOfContents{}
		it.Size = int64(h.Size)
		d.note(it, dump.ErrUnexpectedEOC)
		return it, nil
	}

	var err error
	switch {
	case depth > d.cfg.MaxDepth && d.cfg.SkipBeyondDepth:
		it.Value = Cutoff{}
		err = d.skip(h)
	case depth > dump.RecursionLimit:
		err = d.fail(dump.ErrRecursion, h.Offset, h.String())
	default:
		err = d.decodeContent(it, depth, limit)
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

func (d *Decoder) decodeContent(it *Item, depth int, limit int64) error {
	h := it.Header
	switch {
	case h.Constructed && h.Indefinite:
		return d.decodeIndefinite(it, depth, limit)
	case h.Constructed:
		return d.decodeConstructed(it, depth)
	case h.Class != ClassUniversal:
		return d.decodeOpaque(it, nil)
	}

	switch h.Tag {
	case TagBoolean:
		return d.decodeBool(it)
	case TagInteger, TagEnumerated:
		return d.decodeInt(it)
	case TagNull:
		return d.decodeNull(it)
	case TagOID, TagRelativeOID:
		return d.decodeOID(it)
	case TagBitString:
		return d.decodeBitString(it, depth)
	case TagOctetString:
		return d.decodeOctetString(it, depth)
	case TagReal, TagEmbeddedPDV, TagExternal, TagCharacterString:
		return d.decodeOpaque(it, nil)
	}
	if isString(h.Tag) {
		return d.decodeText(it)
	}
	return d.decodeOpaque(it, dump.ErrUnknownTagOrType)
}

func (d *Decoder) decodeConstructed(it *Item, depth int) error {
	end := d.src.Offset() + it.Header.Length
	var items []*Item
	for d.src.Offset() < end {
		h, err := readHeader(d.src)
		if err != nil {
			it.Value = Constructed{Items: items}
			return d.failHeader(err, h)
		}
		child, err := d.decodeChild(h, depth+1, end)
		items = append(items, child)
		if err != nil {
			it.Value = Constructed{Items: items}
			return err
		}
	}
	it.Value = Constructed{Items: items}
	return nil
}

// read consumes a payload of n bytes and keeps the first keep of them.
func (d *Decoder) read(it *Item, n int64, keep int) ([]byte, error) {
	p, err := d.src.ReadPayload(n, keep)
	if err != nil {
		return nil, d.fail(err, d.src.Offset(), it.Header.String())
	}
	return p, nil
}

// zeroLength sets the default value of a type that needs content.
func (d *Decoder) zeroLength(it *Item, v Value) {
	it.Value = v
	if !d.cfg.AllowZeroLength {
		d.note(it, dump.ErrZeroLength)
	}
}

func (d *Decoder) decodeBool(it *Item) error {
	n := it.Header.Length
	if n == 0 {
		d.zeroLength(it, Bool(false))
		return nil
	}
	p, err := d.read(it, n, 1)
	if err != nil {
		return err
	}
	if n > 1 {
		d.note(it, dump.ErrBadLength)
	}
	it.Value = Bool(p[0] != 0)
	return nil
}

func (d *Decoder) decodeInt(it *Item) error {
	n := it.Header.Length
	if n == 0 {
		d.zeroLength(it, Int(0))
		return nil
	}
	if n > 8 {
		p, err := d.read(it, n, d.cfg.Keep())
		if err != nil {
			return err
		}
		it.Value = BigInt{Data: p, Len: n}
		return nil
	}
	p, err := d.read(it, n, -1)
	if err != nil {
		return err
	}
	var v int64
	if p[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range p {
		v = v<<8 | int64(b)
	}
	it.Value = Int(v)
	return nil
}

func (d *Decoder) decodeNull(it *Item) error {
	if n := it.Header.Length; n != 0 {
		if _, err := d.read(it, n, 0); err != nil {
			return err
		}
		d.note(it, dump.ErrBadLength)
	}
	it.Value = Null{}
	return nil
}

func (d *Decoder) decodeOID(it *Item) error {
	h := it.Header
	p, err := d.read(it, h.Length, -1)
	if err != nil {
		return err
	}
	o, err := parseOID(p, h.Tag == TagRelativeOID)
	if err != nil {
		d.note(it, err)
	}
	it.Value = o
	return nil
}

// keepEncapsulated returns how much of an n byte string payload to keep. A
// payload that may hold nested units is kept whole.
func (d *Decoder) keepEncapsulated(n int64) int {
	if d.cfg.CheckEncapsulated && n <= dump.MaxEncapsulated {
		return -1
	}
	return d.cfg.Keep()
}

// clip limits a payload kept whole for the encapsulation check to the
// configured number of bytes.
func (d *Decoder) clip(p []byte) []byte {
	if d.cfg.MaxBytes > 0 && len(p) > d.cfg.MaxBytes {
		return p[:d.cfg.MaxBytes:d.cfg.MaxBytes]
	}
	return p
}

func (d *Decoder) decodeBitString(it *Item, depth int) error {
	h := it.Header
	if h.Length == 0 {
		it.Value = BitString{}
		d.note(it, dump.ErrBadLength)
		return nil
	}
	unused, err := d.src.ReadByte()
	if err != nil {
		return d.fail(err, d.src.Offset(), h.String())
	}
	n := h.Length - 1
	p, err := d.read(it, n, d.keepEncapsulated(n))
	if err != nil {
		return err
	}
	bs := BitString{Unused: unused, Data: p, Len: n}
	if unused > 7 || (n == 0 && unused != 0) {
		d.note(it, dump.ErrBadLength)
	}
	if unused == 0 && int64(len(p)) == n {
		bs.Encapsulated = d.decodeEncapsulated(p, h.Offset+int64(h.Size)+1, depth+1)
	}
	if bs.Encapsulated == nil {
		bs.Data = d.clip(p)
	}
	it.Value = bs
	return nil
}

func (d *Decoder) decodeOctetString(it *Item, depth int) error {
	h := it.Header
	p, err := d.read(it, h.Length, d.keepEncapsulated(h.Length))
	if err != nil {
		return err
	}
	b := Bytes{Data: p, Len: h.Length}
	if int64(len(p)) == h.Length {
		b.Encapsulated = d.decodeEncapsulated(p, h.Offset+int64(h.Size), depth+1)
	}
	if b.Encapsulated == nil {
		b.Data = d.clip(p)
	}
	it.Value = b
	return nil
}

func (d *Decoder) decodeText(it *Item) error {
	h := it.Header
	p, err := d.read(it, h.Length, d.cfg.Keep())
	if err != nil {
		return err
	}
	data, kept, ok := decodeString(h.Tag, p, int64(len(p)) < h.Length)
	t := Text{Data: data, Len: h.Length, Kept: int64(kept), Invalid: !ok}
	if !ok {
		d.note(it, dump.ErrInvalidUTF8)
	}
	it.Value = t
	return nil
}

// decodeOpaque keeps the payload as bytes. A non-nil warn is recorded.
func (d *Decoder) decodeOpaque(it *Item, warn error) error {
	h := it.Header
	p, err := d.read(it, h.Length, d.cfg.Keep())
	if err != nil {
		return err
	}
	it.Value = Bytes{Data: p, Len: h.Length}
	if warn != nil {
		d.note(it, warn)
	}
	return nil
}

// decodeEncapsulated tries to decode the payload of a string as nested units
// located at base. The result is nil unless the payload starts with a
// constructed unit and every byte of it decodes without any diagnostic.
func (d *Decoder) decodeEncapsulated(p []byte, base int64, depth int) []*Item {
	if !d.cfg.CheckEncapsulated || len(p) < 2 || len(p) > dump.MaxEncapsulated || p[0]&0x20 == 0 {
		return nil
	}
	cfg := d.cfg
	cfg.Logger = nil
	sub := &Decoder{
		src: dump.NewSourceAt(bytes.NewReader(p), base),
		cfg: cfg,
		rec: dump.NewRecorder(&cfg),
	}
	end := base + int64(len(p))
	var items []*Item
	for {
		h, err := readHeader(sub.src)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil
		}
		it, err := sub.decodeChild(h, depth, end)
		if err != nil || !sub.rec.Clean() {
			return nil
		}
		items = append(items, it)
	}
	return items
}

// skip consumes the payload of the unit with header h without looking at
// its children. Definite lengths are discarded in one step. Indefinite
// units are scanned header by header with a counter of open units, so
// arbitrarily deep input does not grow the call stack.
func (d *Decoder) skip(h Header) error {
	if !h.Indefinite {
		if err := d.src.Discard(h.Length); err != nil {
			return d.fail(err, d.src.Offset(), h.String())
		}
		return nil
	}
	for open := 1; open > 0; {
		ch, err := readHeader(d.src)
		if err != nil {
			return d.failHeader(err, ch)
		}
		switch {
		case ch.IsEOC():
			open--
		case ch.Indefinite:
			open++
		default:
			if err := d.src.Discard(ch.Length); err != nil {
				return d.fail(err, d.src.Offset(), ch.String())
			}
		}
	}
	return nil
}
