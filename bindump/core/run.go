package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/synadia-labs/bindump.go/cbor"
	"github.com/synadia-labs/bindump.go/dump"
	"github.com/synadia-labs/bindump.go/tlv"
)

// Limits are the decoding limits shared by both commands.
type Limits struct {
	PrintAll  bool `short:"a" help:"Show every byte of long payloads instead of the first few hundred."`
	MaxLevel  int  `short:"l" default:"100" help:"Deepest nesting level to display."`
	MaxBytes  int  `short:"m" default:"384" help:"Payload bytes to show per value."`
	CheckDeep bool `help:"Decode values below the nesting limit so their problems are counted."`
}

// config returns the decoder configuration for l.
func (l Limits) config(logger *slog.Logger) dump.Config {
	cfg := dump.DefaultConfig()
	cfg.MaxDepth = l.MaxLevel
	cfg.MaxBytes = l.MaxBytes
	if l.PrintAll {
		cfg.MaxBytes = 0
	}
	cfg.SkipBeyondDepth = !l.CheckDeep
	cfg.Logger = logger
	return cfg
}

// ASN1Cmd dumps BER/DER data in the column layout of dumpasn1.
type ASN1Cmd struct {
	Input  `embed:""`
	Limits `embed:""`

	NoCheckCharset bool `short:"c" help:"Do not show printable OCTET STRINGs as text."`
	DumpHeader     bool `short:"d" help:"Show the identifier and length bytes of each unit."`
	NoCheckEncaps  bool `short:"e" help:"Do not look for units encapsulated in OCTET and BIT STRINGs."`
	ShallowIndent  bool `short:"i" help:"Indent by one space per level."`
	Outline        bool `short:"o" help:"Show the structure only, without primitive values."`
	Pure           bool `short:"p" help:"Omit the offset and length columns."`
	HexValues      bool `short:"x" help:"Show offsets and lengths in hex."`
	ZeroLength     bool `short:"z" help:"Accept zero-length BOOLEAN, INTEGER and ENUMERATED values."`
}

// Run dumps the input.
func (c *ASN1Cmd) Run(env *Env) error {
	r, name, err := c.open(env)
	if err != nil {
		return err
	}
	defer r.Close()

	cfg := c.config(env.Logger)
	cfg.AllowZeroLength = c.ZeroLength
	cfg.CheckEncapsulated = !c.NoCheckEncaps
	opts := tlv.Options{
		Pure:            c.Pure,
		HexOffsets:      c.HexValues,
		ShallowIndent:   c.ShallowIndent,
		DumpHeader:      c.DumpHeader,
		Outline:         c.Outline,
		CheckCharset:    !c.NoCheckCharset,
		MaxBytes:        cfg.MaxBytes,
		ShowDiagnostics: true,
	}

	d := tlv.NewDecoder(r, cfg)
	out := bufio.NewWriter(env.Stdout)
	if !c.Pure {
		fmt.Fprintf(out, "Dumping ASN.1 file: %s\n\n", name)
	}
	next := func(w io.Writer) (bool, error) {
		it, err := d.Decode()
		if it == nil {
			return false, err
		}
		if rerr := tlv.Render(w, it, opts); rerr != nil {
			return true, writeError{rerr}
		}
		return true, err
	}
	return dumpStream(env, out, next, d.Diagnostics, true)
}

// CBORCmd dumps CBOR data as an indented tree or in diagnostic notation.
type CBORCmd struct {
	Input  `embed:""`
	Limits `embed:""`

	Compact        bool `short:"c" help:"Do not indent nested items."`
	Offsets        bool `short:"o" help:"Show the byte offset of each item."`
	NoTypes        bool `short:"t" help:"Show values without their type names."`
	Hex            bool `short:"x" help:"Always show byte strings as hex."`
	HexOffsets     bool `help:"Show offsets in hex."`
	NoDecodeNested bool `help:"Do not decode CBOR embedded in byte strings."`
	Diag           bool `help:"Print RFC 8949 diagnostic notation, one item per line."`
}

// Run dumps the input.
func (c *CBORCmd) Run(env *Env) error {
	r, _, err := c.open(env)
	if err != nil {
		return err
	}
	defer r.Close()

	cfg := c.config(env.Logger)
	cfg.CheckEncapsulated = !c.NoDecodeNested
	if c.Diag {
		// notation output carries complete values
		cfg.MaxBytes = 0
	}
	opts := cbor.Options{
		ShowTypes:       !c.NoTypes,
		Compact:         c.Compact,
		ShowOffsets:     c.Offsets || c.HexOffsets,
		HexOffsets:      c.HexOffsets,
		PrintHex:        c.Hex,
		MaxBytes:        cfg.MaxBytes,
		ShowDiagnostics: true,
	}

	d := cbor.NewDecoder(r, cfg)
	out := bufio.NewWriter(env.Stdout)
	first := true
	next := func(w io.Writer) (bool, error) {
		it, err := d.Decode()
		if it == nil {
			return false, err
		}
		var rerr error
		if c.Diag {
			_, rerr = io.WriteString(w, cbor.Diag(it)+"\n")
		} else {
			if !first {
				_, rerr = io.WriteString(w, "\n")
			}
			if rerr == nil {
				rerr = cbor.Render(w, it, opts)
			}
		}
		first = false
		if rerr != nil {
			return true, writeError{rerr}
		}
		return true, err
	}
	return dumpStream(env, out, next, d.Diagnostics, !c.Diag)
}

// writeError marks a failure to write the output, as opposed to a problem in
// the input.
type writeError struct{ err error }

func (e writeError) Error() string { return "write output: " + e.err.Error() }
func (e writeError) Unwrap() error { return e.err }

// dumpStream renders top-level units with next until the end of the input or
// a fatal problem, then writes the summary. next reports whether it rendered
// a unit along with the error of the decoder. A unit cut short by a fatal
// problem is rendered and counted before the error is written.
func dumpStream(env *Env, out *bufio.Writer, next func(io.Writer) (bool, error), diags func() dump.Diagnostics, summary bool) error {
	n := 0
	for {
		ok, err := next(out)
		if ok {
			n++
		}
		if err == io.EOF {
			break
		}
		var we writeError
		if errors.As(err, &we) {
			return we
		}
		if err != nil && !dump.Resumable(err) {
			fmt.Fprintf(out, "\nError: %v\n", err)
			break
		}
	}

	d := diags()
	if summary {
		fmt.Fprintf(out, "\nParsing complete. %d item(s) found.\n", n)
		if d.Errors > 0 {
			fmt.Fprintf(out, "Errors: %d\n", d.Errors)
		}
		if d.Warnings > 0 {
			fmt.Fprintf(out, "Warnings: %d\n", d.Warnings)
		}
	}
	if err := out.Flush(); err != nil {
		return writeError{err}
	}
	env.Logger.Debug("dump finished", "units", n, "errors", d.Errors, "warnings", d.Warnings)
	if d.Errors > 0 {
		return ErrFailed
	}
	return nil
}
