package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// ErrFailed is returned by a command when errors were counted in its input.
// The problems themselves have already been reported.
var ErrFailed = errors.New("errors found in input")

// CLI defines the bindump command-line interface: one subcommand per
// encoding, sharing the logging flags and an optional TOML profile.
type CLI struct {
	Profile kong.ConfigFlag `name:"config" help:"Load flag defaults from a TOML profile." placeholder:"FILE"`
	Verbose bool            `short:"v" help:"Log every diagnostic to standard error as it is found."`
	NoColor bool            `help:"Disable colored log output."`

	ASN1 ASN1Cmd `cmd:"" name:"asn1" help:"Dump BER/DER encoded data."`
	CBOR CBORCmd `cmd:"" name:"cbor" help:"Dump CBOR encoded data."`
}

// Env is what commands need from the process. It is bound into kong so that
// Run methods receive it.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Logger *slog.Logger
}

// Main parses args, runs the selected command and returns the exit status:
// 0 when no errors were counted, 1 when some were or the input could not be
// read, and 2 for usage errors.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer, options ...kong.Option) int {
	var cli CLI
	exit := -1
	opts := append([]kong.Option{
		kong.Name("bindump"),
		kong.Description("Dump BER/DER and CBOR encoded data in a readable form."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exit = code }),
		kong.Configuration(TOML),
	}, options...)

	parser, err := kong.New(&cli, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "bindump: %v\n", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if exit >= 0 {
		// --help
		return exit
	}
	if err != nil {
		fmt.Fprintf(stderr, "bindump: error: %v\n", err)
		return 2
	}

	logger := NewLogger(stderr, cli.Verbose, cli.NoColor)
	err = ctx.Run(&Env{Stdin: stdin, Stdout: stdout, Logger: logger})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFailed):
		return 1
	}
	logger.Error("bindump failed", "err", err)
	return 1
}

// Input selects the data to dump.
type Input struct {
	Path string `arg:"" optional:"" name:"input" help:"Input file; - or nothing reads standard input."`
	File string `short:"f" help:"Read input from FILE, as an alternative to the positional argument." placeholder:"FILE"`
}

// open returns the selected input and the name to show for it.
func (in Input) open(env *Env) (io.ReadCloser, string, error) {
	path := in.Path
	if in.File != "" {
		if path != "" && path != in.File {
			return nil, "", fmt.Errorf("multiple input files specified: %s and %s", in.File, path)
		}
		path = in.File
	}
	if path == "" || path == "-" {
		return io.NopCloser(env.Stdin), "<stdin>", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, path, nil
}
