package tlv

import (
	"bytes"
	encasn1 "encoding/asn1"
	"io"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/synadia-labs/bindump.go/dump"
)

// benchCert builds a certificate-shaped structure with an encapsulated
// extension value.
func benchCert(b *testing.B) []byte {
	b.Helper()
	var bld cryptobyte.Builder
	bld.AddASN1(cbasn1.SEQUENCE, func(bld *cryptobyte.Builder) {
		bld.AddASN1(cbasn1.SEQUENCE, func(bld *cryptobyte.Builder) {
			bld.AddASN1(cbasn1.Tag(0).Constructed().ContextSpecific(), func(bld *cryptobyte.Builder) {
				bld.AddASN1Int64(2)
			})
			bld.AddASN1Int64(0x1234567890)
			for i := 0; i < 8; i++ {
				bld.AddASN1(cbasn1.SET, func(bld *cryptobyte.Builder) {
					bld.AddASN1(cbasn1.SEQUENCE, func(bld *cryptobyte.Builder) {
						bld.AddASN1ObjectIdentifier(encasn1.ObjectIdentifier{2, 5, 4, 3})
						bld.AddASN1(cbasn1.PrintableString, func(bld *cryptobyte.Builder) {
							bld.AddBytes([]byte("bench.example.com"))
						})
					})
				})
			}
			bld.AddASN1(cbasn1.OCTET_STRING, func(bld *cryptobyte.Builder) {
				bld.AddASN1(cbasn1.SEQUENCE, func(bld *cryptobyte.Builder) {
					bld.AddASN1Boolean(true)
					bld.AddASN1Int64(3)
				})
			})
		})
		bld.AddASN1BitString(bytes.Repeat([]byte{0x5a}, 256))
	})
	data, err := bld.Bytes()
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func BenchmarkDecode(b *testing.B) {
	data := benchCert(b)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewDecoder(bytes.NewReader(data), dump.DefaultConfig()).Decode(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRender(b *testing.B) {
	data := benchCert(b)
	it, err := NewDecoder(bytes.NewReader(data), dump.DefaultConfig()).Decode()
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
