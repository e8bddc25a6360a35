package tlv

import (
	"io"

	"github.com/synadia-labs/bindump.go/dump"
)

// Options control Render.
type Options struct {
	Pure          bool // no offset and length columns
	HexOffsets    bool
	ShallowIndent bool // one space per level instead of two
	DumpHeader    bool // show the identifier and length bytes of each unit
	Outline       bool // structure only, no values

	// CheckCharset shows printable OCTET STRING payloads as text.
	CheckCharset bool
	MaxBytes     int // payload bytes shown per unit, 0 shows all

	ShowDiagnostics bool
}

// DefaultOptions returns the options used when no flags are given.
func DefaultOptions() Options {
	return Options{
		CheckCharset:    true,
		MaxBytes:        dump.DefaultMaxBytes,
		ShowDiagnostics: true,
	}
}

const hexPerLine = 16

type renderer struct {
	bb   *dump.ByteBuffer
	opts Options
}

// Render writes it to w in the column layout of dumpasn1: the offset and
// payload length of every unit, followed by its indented label and value.
func Render(w io.Writer, it *Item, opts Options) error {
	bb := dump.GetByteBuffer()
	defer dump.PutByteBuffer(bb)
	r := renderer{bb: bb, opts: opts}
	r.item(it, 0)
	_, err := bb.WriteTo(w)
	return err
}

// columns writes the offset and length columns of it, or blank columns for a
// nil it.
func (r *renderer) columns(it *Item) {
	if r.opts.Pure {
		return
	}
	switch {
	case it == nil:
		r.bb.AppendRepeat(" ", 9)
	case it.Header.Indefinite:
		r.bb.AppendNumber(it.Offset, 4, r.opts.HexOffsets)
		r.bb.WriteString(" NDEF")
	default:
		r.bb.AppendNumber(it.Offset, 4, r.opts.HexOffsets)
		r.bb.WriteByte(' ')
		r.bb.AppendNumber(it.Header.Length, 4, r.opts.HexOffsets)
	}
	r.bb.WriteString(": ")
}

func (r *renderer) indent(level int) {
	if r.opts.ShallowIndent {
		r.bb.AppendRepeat(" ", level)
	} else {
		r.bb.AppendRepeat("  ", level)
	}
}

// line starts a continuation line at level.
func (r *renderer) line(level int) {
	r.columns(nil)
	r.indent(level)
}

func (r *renderer) item(it *Item, level int) {
	r.columns(it)
	r.indent(level)
	if _, ok := it.Value.(Cutoff); ok {
		r.bb.WriteString(dump.CutoffMarker)
		r.bb.WriteByte('\n')
		r.diagnostics(it, level)
		return
	}
	if r.opts.DumpHeader && len(it.Header.Raw) > 0 {
		r.bb.WriteByte('<')
		r.bb.AppendSpacedHex(it.Header.Raw, 0, "")
		r.bb.WriteString("> ")
	}
	if _, ok := it.Value.(EndOfContents); ok {
		r.bb.WriteString("End-of-contents")
	} else {
		r.bb.WriteString(it.Header.String())
	}

	switch v := it.Value.(type) {
	case Constructed:
		r.children(it, v.Items, " {", level)
		return
	case BitString:
		if v.Unused != 0 {
			r.bb.WriteString(" (")
			r.bb.AppendInt(int64(v.Unused))
			r.bb.WriteString(" unused bits)")
		}
		if v.Encapsulated != nil {
			r.children(it, v.Encapsulated, ", encapsulates {", level)
			return
		}
		r.end(it, level)
		if !r.opts.Outline {
			r.hex(v.Data, v.Len, level+1)
		}
		return
	case Bytes:
		if v.Encapsulated != nil {
			r.children(it, v.Encapsulated, ", encapsulates {", level)
			return
		}
		if r.opts.Outline || v.Len == 0 {
			r.end(it, level)
			return
		}
		shown, _ := dump.Truncate(v.Data, v.Len, r.opts.MaxBytes)
		if r.opts.CheckCharset && len(shown) > 0 && dump.Printable(shown) {
			r.quoted(shown, v.Len-int64(len(shown)))
			r.end(it, level)
			return
		}
		r.end(it, level)
		r.hex(v.Data, v.Len, level+1)
		return
	case BigInt:
		r.end(it, level)
		if !r.opts.Outline {
			r.hex(v.Data, v.Len, level+1)
		}
		return
	}

	if !r.opts.Outline {
		switch v := it.Value.(type) {
		case Bool:
			if v {
				r.bb.WriteString(" TRUE")
			} else {
				r.bb.WriteString(" FALSE")
			}
		case Int:
			r.bb.WriteByte(' ')
			r.bb.AppendInt(int64(v))
		case OID:
			if len(v.Arcs) == 0 {
				r.bb.WriteString(" (empty)")
			} else {
				r.bb.WriteByte(' ')
				r.bb.WriteString(v.String())
			}
		case Text:
			r.text(v)
		}
	}
	r.end(it, level)
}

// end finishes the first line of it.
func (r *renderer) end(it *Item, level int) {
	r.bb.WriteByte('\n')
	r.diagnostics(it, level)
}

func (r *renderer) children(it *Item, items []*Item, open string, level int) {
	r.bb.WriteString(open)
	if len(items) == 0 {
		r.bb.WriteByte('}')
		r.end(it, level)
		return
	}
	r.end(it, level)
	for _, c := range items {
		r.item(c, level+1)
	}
	r.line(level)
	r.bb.WriteString("}\n")
}

// quoted writes a printable payload in single quotes.
func (r *renderer) quoted(p []byte, more int64) {
	r.bb.WriteString(" '")
	r.bb.Write(p)
	r.bb.WriteByte('\'')
	r.more(more)
}

func (r *renderer) more(n int64) {
	if n > 0 {
		r.bb.WriteString(" ... (")
		r.bb.AppendInt(n)
		r.bb.WriteString(" more bytes)")
	}
}

func (r *renderer) text(v Text) {
	if v.Invalid {
		r.bb.WriteString(" <invalid string, ")
		r.bb.AppendInt(v.Len)
		r.bb.WriteString(" bytes>")
		return
	}
	shown := v.Data
	cut := false
	if r.opts.MaxBytes > 0 && len(shown) > r.opts.MaxBytes {
		shown = dump.TrimPartialRune(shown[:r.opts.MaxBytes])
		cut = true
	}
	r.bb.WriteString(" '")
	r.bb.Write(shown)
	r.bb.WriteByte('\'')
	switch {
	case v.Kept < v.Len:
		r.more(v.Len - v.Kept)
	case cut:
		r.bb.WriteString(" ...")
	}
}

// hex writes a payload as hex lines below its unit.
func (r *renderer) hex(p []byte, total int64, level int) {
	if total == 0 {
		return
	}
	shown, more := dump.Truncate(p, total, r.opts.MaxBytes)
	prefix := r.prefix(level)
	r.bb.WriteString(prefix)
	r.bb.AppendSpacedHex(shown, hexPerLine, prefix)
	r.bb.WriteByte('\n')
	if more > 0 {
		r.bb.WriteString(prefix)
		r.bb.WriteString("... (")
		r.bb.AppendInt(more)
		r.bb.WriteString(" more bytes)\n")
	}
}

// prefix returns the start of a continuation line at level.
func (r *renderer) prefix(level int) string {
	bb := dump.GetByteBuffer()
	defer dump.PutByteBuffer(bb)
	sub := renderer{bb: bb, opts: r.opts}
	sub.line(level)
	return string(bb.Bytes())
}

// diagnostics writes one line per problem attached to it.
func (r *renderer) diagnostics(it *Item, level int) {
	if !r.opts.ShowDiagnostics || it.Err == nil {
		return
	}
	for _, err := range dump.Unjoin(it.Err) {
		r.line(level + 1)
		if dump.SeverityOf(err) == dump.Warning {
			r.bb.WriteString("Warning: ")
		} else {
			r.bb.WriteString("Error: ")
		}
		r.bb.WriteString(err.Error())
		r.bb.WriteByte('\n')
	}
}
