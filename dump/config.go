package dump

import "log/slog"

const (
	// DefaultMaxDepth is the default nesting cutoff. The root unit is at
	// depth 0.
	DefaultMaxDepth = 100

	// DefaultMaxBytes is the default number of payload bytes materialized and
	// displayed per scalar.
	DefaultMaxBytes = 384

	// MaxEncapsulated bounds the payload size for which a nested decode is
	// attempted. Larger payloads are displayed as plain bytes.
	MaxEncapsulated = 64 << 10

	// RecursionLimit bounds the call depth when children past the nesting
	// cutoff are decoded rather than skipped.
	RecursionLimit = 100000
)

// Config controls decoding. Use DefaultConfig and adjust fields; the zero
// value disables every optional check and cuts off below the root.
type Config struct {
	// MaxDepth is the deepest nesting level that is materialized.
	MaxDepth int

	// MaxBytes is the number of payload bytes kept per scalar. Zero or a
	// negative value keeps everything.
	MaxBytes int

	// WarnNonCanonical counts non-minimal length encodings as warnings. The
	// NonCanonical header flag is set either way.
	WarnNonCanonical bool

	// SkipBeyondDepth consumes units past MaxDepth without looking at their
	// children. When false, those children are still decoded so their
	// diagnostics are counted, and then dropped.
	SkipBeyondDepth bool

	// AllowZeroLength accepts zero-length BOOLEAN, INTEGER and ENUMERATED
	// values and decodes them to their zero value.
	AllowZeroLength bool

	// CheckEncapsulated tries to decode OCTET STRING and BIT STRING payloads
	// (tlv) or embedded byte strings (cbor) as nested data.
	CheckEncapsulated bool

	// Logger receives every diagnostic. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by the command line tool when
// no flags are given.
func DefaultConfig() Config {
	return Config{
		MaxDepth:          DefaultMaxDepth,
		MaxBytes:          DefaultMaxBytes,
		WarnNonCanonical:  true,
		SkipBeyondDepth:   true,
		CheckEncapsulated: true,
	}
}

// Keep returns the number of payload bytes to materialize for a scalar, as
// accepted by Source.ReadPayload.
func (c *Config) Keep() int {
	if c.MaxBytes <= 0 {
		return -1
	}
	return c.MaxBytes
}

// Log returns c.Logger or a logger that discards everything.
func (c *Config) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
