package cbor

import (
	"bytes"
	"io"
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"

	"github.com/synadia-labs/bindump.go/dump"
)

// Decode and render benchmarks, with fxamacker's diagnostic notation as a
// point of comparison for a full walk of the same input.

func benchDoc(b *testing.B) []byte {
	b.Helper()
	doc := map[string]any{
		"name":    "jetstream",
		"streams": []any{uint64(1), uint64(2), uint64(3), "four", []byte{5, 6, 7}},
		"nested":  map[string]any{"a": 1.5, "b": true, "c": nil},
		"blob":    bytes.Repeat([]byte{0xab}, 512),
	}
	data, err := fxcbor.Marshal(doc)
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func BenchmarkDecode(b *testing.B) {
	data := benchDoc(b)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDecoder(bytes.NewReader(data), dump.DefaultConfig())
		for {
			if _, err := d.Decode(); err != nil {
				if err != io.EOF {
					b.Fatal(err)
				}
				break
			}
		}
	}
}

func BenchmarkRender(b *testing.B) {
	data := benchDoc(b)
	d := NewDecoder(bytes.NewReader(data), dump.DefaultConfig())
	it, err := d.Decode()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Render(io.Discard, it, DefaultOptions()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDiag(b *testing.B) {
	data := benchDoc(b)
	cfg := dump.DefaultConfig()
	cfg.MaxBytes = 0
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it, err := NewDecoder(bytes.NewReader(data), cfg).Decode()
		if err != nil {
			b.Fatal(err)
		}
		_ = Diag(it)
	}
}

func BenchmarkFxamackerDiagnose(b *testing.B) {
	data := benchDoc(b)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fxcbor.Diagnose(data); err != nil {
			b.Fatal(err)
		}
	}
}
