package cbor

import (
	"io"

	"github.com/synadia-labs/bindump.go/dump"
)

// Options control Render.
type Options struct {
	ShowTypes   bool // prefix values with their type name
	Compact     bool // no indentation
	ShowOffsets bool // prefix each line with the item offset
	HexOffsets  bool
	PrintHex    bool // always show byte strings as hex
	MaxBytes    int  // payload bytes shown per scalar, 0 shows all

	// ShowDiagnostics adds a line for every problem attached to an item.
	ShowDiagnostics bool
}

// DefaultOptions returns the options used when no flags are given.
func DefaultOptions() Options {
	return Options{
		ShowTypes:       true,
		MaxBytes:        dump.DefaultMaxBytes,
		ShowDiagnostics: true,
	}
}

const hexPerLine = 16

type renderer struct {
	bb   *dump.ByteBuffer
	opts Options
}

// Render writes a readable tree of it to w.
func Render(w io.Writer, it *Item, opts Options) error {
	bb := dump.GetByteBuffer()
	defer dump.PutByteBuffer(bb)
	r := renderer{bb: bb, opts: opts}
	r.item(it, 0)
	_, err := bb.WriteTo(w)
	return err
}

// line starts an output line. A negative offset pads the offset column.
func (r *renderer) line(offset int64, level int) {
	if r.opts.ShowOffsets {
		r.bb.WriteByte('[')
		if offset < 0 {
			r.bb.AppendRepeat(" ", 4)
		} else {
			r.bb.AppendNumber(offset, 4, r.opts.HexOffsets)
		}
		r.bb.WriteString("] ")
	}
	if !r.opts.Compact {
		r.bb.AppendRepeat("  ", level)
	}
}

func (r *renderer) typed(name string) {
	if r.opts.ShowTypes {
		r.bb.WriteString(name)
	}
}

func (r *renderer) item(it *Item, level int) {
	r.line(it.Offset, level)
	switch v := it.Value.(type) {
	case Uint:
		r.number(it, uint64(v), "")
	case NegInt:
		r.number(it, 0, v.String())
	case Bytes:
		r.bytes(it, v, level)
		return
	case Text:
		r.text(it, v)
	case Array:
		r.typed("array(")
		r.count(it, len(v.Items), " items) [\n", "[\n")
		r.diagnostics(it, level)
		for _, c := range v.Items {
			r.item(c, level+1)
		}
		r.line(-1, level)
		r.bb.WriteString("]\n")
		return
	case Map:
		r.typed("map(")
		r.count(it, len(v.Pairs), " pairs) {\n", "{\n")
		r.diagnostics(it, level)
		for _, p := range v.Pairs {
			r.item(p.Key, level+1)
			r.line(-1, level+1)
			r.bb.WriteString("=>\n")
			if p.Value == nil {
				r.line(-1, level+1)
				r.bb.WriteString("<missing value>\n")
				continue
			}
			r.item(p.Value, level+1)
		}
		r.line(-1, level)
		r.bb.WriteString("}\n")
		return
	case Tagged:
		name := TagName(v.Tag)
		if r.opts.ShowTypes {
			r.bb.WriteString("tag ")
			r.bb.AppendUint(v.Tag)
			if name != "" {
				r.bb.WriteString(" (")
				r.bb.WriteString(name)
				r.bb.WriteByte(')')
			}
		} else {
			r.bb.WriteString("tag(")
			if name != "" {
				r.bb.WriteString(name)
			} else {
				r.bb.AppendUint(v.Tag)
			}
			r.bb.WriteByte(')')
		}
		r.bb.WriteString(" {\n")
		r.diagnostics(it, level)
		if v.Item != nil {
			r.item(v.Item, level+1)
		}
		r.line(-1, level)
		r.bb.WriteString("}\n")
		return
	case Bool:
		if r.opts.ShowTypes {
			r.bb.WriteString("bool: ")
		}
		if v {
			r.bb.WriteString("true")
		} else {
			r.bb.WriteString("false")
		}
	case Null:
		r.bb.WriteString("null")
	case Undefined:
		r.bb.WriteString("undefined")
	case Simple:
		if r.opts.ShowTypes {
			r.bb.WriteString("simple(")
			r.bb.AppendUint(uint64(v))
			r.bb.WriteByte(')')
		} else {
			r.bb.WriteString("simple:")
			r.bb.AppendUint(uint64(v))
		}
	case Float:
		if r.opts.ShowTypes {
			r.bb.WriteString(TypeName(v))
			r.bb.WriteString(": ")
		}
		r.bb.WriteString(formatFloat(v))
	case Break:
		r.bb.WriteString("break")
	case Cutoff:
		r.bb.WriteString(dump.CutoffMarker)
	case nil:
		// decoding stopped before the content
		r.bb.WriteString(it.Header.String())
	}
	r.bb.WriteByte('\n')
	r.diagnostics(it, level)
}

// count writes the element count of a container: the declared count of a
// definite container, the number found in an indefinite one, which is marked
// with an underscore.
func (r *renderer) count(it *Item, n int, typed, untyped string) {
	if !r.opts.ShowTypes {
		r.bb.WriteString(untyped)
		return
	}
	if it.Header.Indefinite {
		r.bb.WriteString("_ ")
		r.bb.AppendInt(int64(n))
	} else {
		r.bb.AppendUint(it.Header.Arg)
	}
	r.bb.WriteString(typed)
}

func (r *renderer) number(it *Item, u uint64, s string) {
	if r.opts.ShowTypes {
		r.bb.WriteString(MajorName(it.Header.Major))
		r.bb.WriteByte('(')
	}
	if s != "" {
		r.bb.WriteString(s)
	} else {
		r.bb.AppendUint(u)
	}
	if r.opts.ShowTypes {
		r.bb.WriteByte(')')
	}
}

func (r *renderer) bytes(it *Item, v Bytes, level int) {
	if r.opts.ShowTypes {
		r.bb.WriteString("bytes(")
		if it.Header.Indefinite {
			r.bb.WriteString("_ ")
		}
		r.bb.AppendInt(v.Len)
		r.bb.WriteString(" bytes)")
	} else {
		r.bb.WriteByte('<')
		r.bb.AppendInt(v.Len)
		r.bb.WriteString(" bytes>")
	}
	if v.Embedded != nil {
		r.bb.WriteString(" {\n")
		r.diagnostics(it, level)
		for _, e := range v.Embedded {
			r.item(e, level+1)
		}
		r.line(-1, level)
		r.bb.WriteString("}\n")
		return
	}
	r.bb.WriteByte('\n')
	r.diagnostics(it, level)
	if v.Len == 0 {
		return
	}
	shown, more := dump.Truncate(v.Data, v.Len, r.opts.MaxBytes)
	r.line(-1, level)
	r.bb.WriteString("  ")
	if !r.opts.PrintHex && len(shown) > 0 && dump.Printable(shown) {
		r.bb.AppendQuoted(string(shown))
	} else {
		r.bb.AppendSpacedHex(shown, hexPerLine, r.continuation(level))
	}
	if more > 0 {
		r.bb.WriteByte('\n')
		r.line(-1, level)
		r.bb.WriteString("  ... (")
		r.bb.AppendInt(more)
		r.bb.WriteString(" more bytes)")
	}
	r.bb.WriteByte('\n')
}

// continuation returns the prefix of a wrapped hex line.
func (r *renderer) continuation(level int) string {
	bb := dump.GetByteBuffer()
	defer dump.PutByteBuffer(bb)
	sub := renderer{bb: bb, opts: r.opts}
	sub.line(-1, level)
	bb.WriteString("  ")
	return string(bb.Bytes())
}

func (r *renderer) text(it *Item, v Text) {
	if r.opts.ShowTypes {
		r.bb.WriteString("text")
		if it.Header.Indefinite {
			r.bb.WriteString("(_)")
		}
		r.bb.WriteString(": ")
	}
	if v.Invalid {
		r.bb.WriteString("<invalid UTF-8, ")
		r.bb.AppendInt(v.Len)
		r.bb.WriteString(" bytes>")
		return
	}
	shown, more := dump.Truncate(v.Data, v.Len, r.opts.MaxBytes)
	if more > 0 {
		shown = dump.TrimPartialRune(shown)
		more = v.Len - int64(len(shown))
	}
	r.bb.AppendQuoted(string(shown))
	if more > 0 {
		r.bb.WriteString(" ... (")
		r.bb.AppendInt(more)
		r.bb.WriteString(" more bytes)")
	}
}

// diagnostics writes one line per problem attached to it.
func (r *renderer) diagnostics(it *Item, level int) {
	if !r.opts.ShowDiagnostics || it.Err == nil {
		return
	}
	for _, err := range dump.Unjoin(it.Err) {
		r.line(-1, level)
		if dump.SeverityOf(err) == dump.Warning {
			r.bb.WriteString("  Warning: ")
		} else {
			r.bb.WriteString("  Error: ")
		}
		r.bb.WriteString(err.Error())
		r.bb.WriteByte('\n')
	}
}
