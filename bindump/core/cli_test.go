package core

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type run struct {
	code   int
	stdout string
	stderr string
}

func invoke(t *testing.T, stdin []byte, args ...string) run {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(append([]string{"--no-color"}, args...), bytes.NewReader(stdin), &stdout, &stderr)
	return run{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, name, hexData string) string {
	t.Helper()
	data, err := hex.DecodeString(strings.ReplaceAll(hexData, " ", ""))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestASN1File(t *testing.T) {
	path := writeFile(t, "seq.der", "30 03 02 01 05")
	r := invoke(t, nil, "asn1", path)
	require.Equal(t, 0, r.code, r.stderr)
	want := "Dumping ASN.1 file: " + path + "\n\n" +
		"   0    3: SEQUENCE {\n" +
		"   2    1:   INTEGER 5\n" +
		"         : }\n" +
		"\nParsing complete. 1 item(s) found.\n"
	require.Equal(t, want, r.stdout)
}

func TestASN1FileFlag(t *testing.T) {
	path := writeFile(t, "seq.der", "30 03 02 01 05")
	r := invoke(t, nil, "asn1", "-p", "-f", path)
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "SEQUENCE {\n  INTEGER 5\n}\n\nParsing complete. 1 item(s) found.\n", r.stdout)
}

func TestMultipleInputs(t *testing.T) {
	a := writeFile(t, "a.der", "05 00")
	b := writeFile(t, "b.der", "05 00")
	r := invoke(t, nil, "asn1", "-f", a, b)
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "multiple input files specified")
}

func TestMissingFile(t *testing.T) {
	r := invoke(t, nil, "cbor", filepath.Join(t.TempDir(), "missing.cbor"))
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "open input")
}

func TestCBORStdin(t *testing.T) {
	r := invoke(t, mustDecodeHex(t, "83 01 02 03 f5"), "cbor", "-")
	require.Equal(t, 0, r.code, r.stderr)
	want := "array(3 items) [\n  unsigned(1)\n  unsigned(2)\n  unsigned(3)\n]\n" +
		"\nbool: true\n" +
		"\nParsing complete. 2 item(s) found.\n"
	require.Equal(t, want, r.stdout)
}

func TestCBORDiag(t *testing.T) {
	r := invoke(t, mustDecodeHex(t, "9f 01 ff a1 61 61 42 01 02"), "cbor", "--diag")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "[_ 1]\n{\"a\": h'0102'}\n", r.stdout)
}

func TestErrorsSetExitStatus(t *testing.T) {
	path := writeFile(t, "zero.der", "01 00")
	r := invoke(t, nil, "asn1", "-p", path)
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stdout, "Errors: 1\n")
	require.Contains(t, r.stderr, "zero-length value")

	r = invoke(t, nil, "asn1", "-p", "-z", path)
	require.Equal(t, 0, r.code)
	require.Equal(t, "BOOLEAN FALSE\n\nParsing complete. 1 item(s) found.\n", r.stdout)
}

func TestWarningsKeepExitStatus(t *testing.T) {
	path := writeFile(t, "bool.der", "01 02 ff 00")
	r := invoke(t, nil, "asn1", "-p", path)
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "Warnings: 1\n")
	require.NotContains(t, r.stdout, "Errors:")
	require.Empty(t, r.stderr)

	r = invoke(t, nil, "-v", "asn1", "-p", path)
	require.Contains(t, r.stderr, "unexpected length for type")
}

func TestFatalStopsDump(t *testing.T) {
	path := writeFile(t, "cut.der", "05 00 30 05 02 01")
	r := invoke(t, nil, "asn1", "-p", path)
	require.Equal(t, 1, r.code)
	want := "NULL\n" +
		"SEQUENCE {\n" +
		"  INTEGER\n" +
		"    Error: syntax error in INTEGER at offset 6: truncated data\n" +
		"}\n" +
		"\nError: syntax error in INTEGER at offset 6: truncated data\n" +
		"\nParsing complete. 2 item(s) found.\nErrors: 1\n"
	require.Equal(t, want, r.stdout)
}

func TestFatalShowsDecodedPrefix(t *testing.T) {
	path := writeFile(t, "overrun.der", "30 0c 02 01 05 04 05 68656c6c6f 0c 02 61")
	r := invoke(t, nil, "asn1", path)
	require.Equal(t, 1, r.code)
	want := "Dumping ASN.1 file: " + path + "\n\n" +
		"   0   12: SEQUENCE {\n" +
		"   2    1:   INTEGER 5\n" +
		"   5    5:   OCTET STRING 'hello'\n" +
		"  12    2:   UTF8String\n" +
		"         :     Error: syntax error in UTF8String at offset 12: data value exceeds parent\n" +
		"         : }\n" +
		"\nError: syntax error in UTF8String at offset 12: data value exceeds parent\n" +
		"\nParsing complete. 1 item(s) found.\nErrors: 1\n"
	require.Equal(t, want, r.stdout)

	r = invoke(t, mustDecodeHex(t, "82 01 45 0102"), "cbor", "--diag")
	require.Equal(t, 1, r.code)
	require.Equal(t, "[1, / incomplete /]\n\nError: syntax error in bytes(5) at offset 5: truncated data\n", r.stdout)
}

func TestMaxLevel(t *testing.T) {
	path := writeFile(t, "deep.der", "30 04 30 02 05 00")
	r := invoke(t, nil, "asn1", "-p", "-l", "1", path)
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "SEQUENCE {\n  SEQUENCE {\n    <max nesting level exceeded>\n  }\n}\n")
}

func TestProfile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "bindump.toml")
	require.NoError(t, os.WriteFile(profile, []byte(`
max_level = 0

[asn1]
pure = true
max-level = 1
`), 0o600))

	path := writeFile(t, "deep.der", "30 04 30 02 05 00")
	r := invoke(t, nil, "--config", profile, "asn1", path)
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "SEQUENCE {\n  SEQUENCE {\n    <max nesting level exceeded>\n  }\n}\n\nParsing complete. 1 item(s) found.\n", r.stdout)

	// flags on the command line win over the profile
	r = invoke(t, nil, "--config", profile, "asn1", "-l", "5", path)
	require.Contains(t, r.stdout, "    NULL\n")
}

func TestUsageError(t *testing.T) {
	r := invoke(t, nil, "asn1", "--bogus")
	require.Equal(t, 2, r.code)
	require.Contains(t, r.stderr, "bogus")
}

func TestHelp(t *testing.T) {
	r := invoke(t, nil, "--help")
	require.Equal(t, 0, r.code)
	require.Contains(t, r.stdout, "asn1")
	require.Contains(t, r.stdout, "cbor")
}

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}
