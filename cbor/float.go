package cbor

import (
	"math"
	"strconv"

	"github.com/x448/float16"
)

// decodeFloat widens the float held in the argument of h. Half precision
// subnormals, infinities and NaN payloads are preserved.
func decodeFloat(h Header) Float {
	switch h.Info {
	case simpleFloat16:
		return Float{Value: float64(float16.Frombits(uint16(h.Arg)).Float32()), Bits: 16}
	case simpleFloat32:
		return Float{Value: float64(math.Float32frombits(uint32(h.Arg))), Bits: 32}
	default:
		return Float{Value: math.Float64frombits(h.Arg), Bits: 64}
	}
}

// formatFloat returns f in diagnostic notation: Infinity, -Infinity and NaN
// by name, integral values with a trailing ".0", and the shortest
// representation that round-trips at the encoded width otherwise.
func formatFloat(f Float) string {
	switch {
	case math.IsInf(f.Value, 1):
		return "Infinity"
	case math.IsInf(f.Value, -1):
		return "-Infinity"
	case math.IsNaN(f.Value):
		return "NaN"
	}
	bits := 64
	if f.Bits < 64 {
		bits = 32
	}
	af := math.Abs(f.Value)
	if af != 0 && (af >= 1e15 || af < 1e-6) {
		return strconv.FormatFloat(f.Value, 'g', -1, bits)
	}
	s := strconv.FormatFloat(f.Value, 'f', -1, bits)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}
