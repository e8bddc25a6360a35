// Command bindump prints BER/DER and CBOR encoded data as an annotated tree.
//
//	bindump asn1 cert.der
//	bindump cbor --offsets --hex message.cbor
//	bindump --config profile.toml cbor --diag -
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/synadia-labs/bindump.go/bindump/core"
)

func main() {
	os.Exit(core.Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr,
		kong.Configuration(core.TOML, "~/.config/bindump.toml"),
	))
}
